package bash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := map[string]Kind{
		"exit":    Exit,
		"cd":      Cd,
		"export":  Export,
		"local":   Local,
		"vars":    Vars,
		"history": History,
		"ls":      Ls,
		"echo":    NotBuiltin,
		"":        NotBuiltin,
		"EXIT":    NotBuiltin,
		"ls ":     NotBuiltin,
	}

	for name, expected := range tests {
		assert.Equal(t, expected, Classify(name), "Classify(%q)", name)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "history", History.String())
	assert.Equal(t, "not-builtin", NotBuiltin.String())
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta", "Alpha", "beta", ".hidden", ".config"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "middle"), 0755))

	names, err := ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "middle", "zeta"}, names)
}

func TestListDirEmpty(t *testing.T) {
	names, err := ListDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListDirMissing(t *testing.T) {
	_, err := ListDir(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		arg   string
		name  string
		value string
		err   bool
	}{
		{arg: "A=1", name: "A", value: "1"},
		{arg: "A=", name: "A", value: ""},
		{arg: "URL=a=b", name: "URL", value: "a=b"},
		{arg: "A=$B", name: "A", value: "$B"},
		{arg: "NOEQUALS", err: true},
		{arg: "=value", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := ParseAssignment(tt.arg)
			if tt.err {
				assert.EqualError(t, err, "invalid argument: "+tt.arg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"cd", "exit", "export", "history", "local", "ls", "vars"}, Names())
}
