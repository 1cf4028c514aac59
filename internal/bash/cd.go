package bash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robottwo/wsh/internal/environment"
)

var (
	ErrHomeNotSet    = errors.New("HOME not set")
	ErrOldPwdNotSet  = errors.New("OLDPWD not set")
	ErrTooManyArgs   = errors.New("too many arguments")
	ErrNotADirectory = errors.New("not a directory")
)

// ChangeDir implements the cd builtin. args[0] is the command name. With no
// argument it changes to $HOME. On success PWD and OLDPWD are updated in env
// and the new directory is returned.
func ChangeDir(env environment.Env, args []string) (string, error) {
	var targetDir string
	switch len(args) {
	case 0, 1:
		home := env.Getenv(environment.EnvHome)
		if home == "" {
			return "", ErrHomeNotSet
		}
		targetDir = home
	case 2:
		targetDir = args[1]
	default:
		return "", ErrTooManyArgs
	}

	switch targetDir {
	case "~":
		home := env.Getenv(environment.EnvHome)
		if home == "" {
			return "", ErrHomeNotSet
		}
		targetDir = home
	case "-":
		prevDir := env.Getenv(environment.EnvOldPWD)
		if prevDir == "" {
			return "", ErrOldPwdNotSet
		}
		targetDir = prevDir
	}

	previousDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to get current directory: %w", err)
	}

	if filepath.IsAbs(targetDir) {
		targetDir = filepath.Clean(targetDir)
	} else {
		targetDir = filepath.Join(previousDir, targetDir)
	}

	info, err := os.Stat(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no such file or directory: %s", targetDir)
		}
		return "", fmt.Errorf("%s: %w", targetDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, targetDir)
	}

	if err := os.Chdir(targetDir); err != nil {
		if os.IsPermission(err) {
			return "", fmt.Errorf("permission denied: %s", targetDir)
		}
		return "", fmt.Errorf("%s: %w", targetDir, err)
	}

	if err := env.Setenv(environment.EnvOldPWD, previousDir); err != nil {
		return targetDir, fmt.Errorf("failed to set OLDPWD: %w", err)
	}
	if err := env.Setenv(environment.EnvPWD, targetDir); err != nil {
		return targetDir, fmt.Errorf("failed to set PWD: %w", err)
	}

	return targetDir, nil
}
