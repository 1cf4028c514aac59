package core

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookPath(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	writeScript(t, second, "tool", "#!/bin/sh\n")
	writeScript(t, first, "tool", "#!/bin/sh\n")
	require.NoError(t, os.WriteFile(filepath.Join(first, "data"), nil, 0644))
	writeScript(t, second, "data", "#!/bin/sh\n")
	require.NoError(t, os.Mkdir(filepath.Join(first, "dir"), 0755))

	path, err := LookPath("tool", first+":"+second)
	require.NoError(t, err)
	assert.Equal(t, first+"/tool", path, "the first directory wins")

	path, err = LookPath("data", first+":"+second)
	require.NoError(t, err)
	assert.Equal(t, second+"/data", path, "files without execute permission are skipped")

	_, err = LookPath("dir", first)
	assert.ErrorIs(t, err, ErrCommandNotFound, "directories are never commands")

	path, err = LookPath("tool", "::"+second+":")
	require.NoError(t, err)
	assert.Equal(t, second+"/tool", path, "empty entries are ignored")

	_, err = LookPath("tool", "")
	assert.ErrorIs(t, err, ErrCommandNotFound)

	_, err = LookPath("", first)
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestLookPathWithSlash(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "run.sh", "#!/bin/sh\n")

	path, err := LookPath(script, "")
	require.NoError(t, err)
	assert.Equal(t, script, path)

	_, err = LookPath(filepath.Join(dir, "missing.sh"), "/bin")
	assert.ErrorIs(t, err, ErrCommandNotFound)

	t.Chdir(dir)
	path, err = LookPath("./run.sh", "")
	require.NoError(t, err)
	assert.Equal(t, "./run.sh", path)
}

func TestLookPathRelativeSearchDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeScript(t, dir, "local-tool", "#!/bin/sh\n")

	path, err := LookPath("local-tool", ".")
	require.NoError(t, err)
	assert.Equal(t, "./local-tool", path, "the result keeps a slash so os/exec does not search again")
}

func TestWaitStatus(t *testing.T) {
	status, err := waitStatus(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, status)

	status, err = waitStatus(exec.Command("/bin/sh", "-c", "exit 42").Run())
	require.NoError(t, err)
	assert.Equal(t, 42, status)

	status, err = waitStatus(exec.Command("/bin/sh", "-c", "kill -KILL $$").Run())
	require.NoError(t, err)
	assert.Equal(t, 128+9, status)

	waitErr := errors.New("wait: no child processes")
	status, err = waitStatus(waitErr)
	assert.Equal(t, StatusFailure, status)
	assert.Equal(t, waitErr, err)
}
