package completion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBin(t *testing.T) string {
	t.Helper()
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "hello"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "help-me"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "hear"), []byte("data"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(bin, "hdir"), 0755))
	return bin
}

func TestCommands(t *testing.T) {
	bin := setupBin(t)
	c := New(func() string { return "::" + bin + ":" + bin })

	assert.Equal(t, []string{"hello", "help-me", "history"}, c.Commands("h"))
	assert.Equal(t, []string{"export"}, c.Commands("exp"))
	assert.Empty(t, c.Commands("zzz"))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("notes.txt", nil, 0644))
	require.NoError(t, os.WriteFile(".notes", nil, 0644))
	require.NoError(t, os.Mkdir("nested", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("nested", "inner.txt"), nil, 0644))

	assert.ElementsMatch(t, []string{"notes.txt", "nested/"}, Files("n"))
	assert.Equal(t, []string{".notes"}, Files(".n"))
	assert.Equal(t, []string{"nested/inner.txt"}, Files("nested/i"))
	assert.Empty(t, Files("missing/"))
}

func TestDo(t *testing.T) {
	bin := setupBin(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("output.log", nil, 0644))

	c := New(func() string { return bin })

	suffixes, length := c.Do([]rune("hel"), 3)
	assert.Equal(t, 3, length)
	assert.Equal(t, [][]rune{[]rune("lo"), []rune("p-me")}, suffixes)

	suffixes, length = c.Do([]rune("cat out"), 7)
	assert.Equal(t, 3, length)
	assert.Equal(t, [][]rune{[]rune("put.log")}, suffixes)

	suffixes, length = c.Do([]rune("ec"), 2)
	assert.Equal(t, 2, length)
	assert.Empty(t, suffixes)
}
