package bash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robottwo/wsh/internal/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeDir(t *testing.T) {
	// Setup temporary directory structure
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0755))

	dashDir := filepath.Join(tmpDir, "-")
	require.NoError(t, os.Mkdir(dashDir, 0755))

	file := filepath.Join(tmpDir, "file")
	require.NoError(t, os.WriteFile(file, []byte("content"), 0644))

	// Save original working directory
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	tests := []struct {
		name          string
		args          []string
		env           map[string]string
		expectedError string
		checkDir      string
	}{
		{
			name:     "cd to valid directory",
			args:     []string{"cd", subDir},
			checkDir: subDir,
		},
		{
			name:     "cd to relative directory",
			args:     []string{"cd", "subdir"},
			checkDir: subDir,
		},
		{
			name:          "cd to non-existent directory",
			args:          []string{"cd", filepath.Join(tmpDir, "nonexistent")},
			expectedError: "no such file or directory",
		},
		{
			name:          "cd to file",
			args:          []string{"cd", file},
			expectedError: "not a directory",
		},
		{
			name:     "cd home",
			args:     []string{"cd"},
			env:      map[string]string{"HOME": subDir},
			checkDir: subDir,
		},
		{
			name:          "cd home unset",
			args:          []string{"cd"},
			expectedError: "HOME not set",
		},
		{
			name:     "cd tilde",
			args:     []string{"cd", "~"},
			env:      map[string]string{"HOME": subDir},
			checkDir: subDir,
		},
		{
			name:     "cd previous",
			args:     []string{"cd", "-"},
			env:      map[string]string{"OLDPWD": subDir},
			checkDir: subDir,
		},
		{
			name:          "cd previous unset",
			args:          []string{"cd", "-"},
			expectedError: "OLDPWD not set",
		},
		{
			name:     "directory named dash",
			args:     []string{"cd", "./-"},
			env:      map[string]string{"OLDPWD": subDir},
			checkDir: dashDir,
		},
		{
			name:          "too many arguments",
			args:          []string{"cd", subDir, tmpDir},
			expectedError: "too many arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset working directory
			require.NoError(t, os.Chdir(tmpDir))

			env := environment.NewMapEnv()
			for k, v := range tt.env {
				require.NoError(t, env.Setenv(k, v))
			}

			dir, err := ChangeDir(env, tt.args)

			wd, wdErr := os.Getwd()
			require.NoError(t, wdErr)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Equal(t, tmpDir, wd, "a failed cd must not move")
				_, ok := env.LookupEnv(environment.EnvPWD)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.checkDir, dir)
			assert.Equal(t, tt.checkDir, wd)
			assert.Equal(t, tt.checkDir, env.Getenv(environment.EnvPWD))
			assert.Equal(t, tmpDir, env.Getenv(environment.EnvOldPWD))
		})
	}
}
