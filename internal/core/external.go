package core

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/robottwo/wsh/internal/audit"
	"github.com/robottwo/wsh/internal/redirect"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var ErrCommandNotFound = errors.New("command not found")

// LookPath finds name in the colon-separated searchPath. The first directory
// holding an executable, non-directory file of that name wins. A name
// containing a slash is checked as given.
func LookPath(name string, searchPath string) (string, error) {
	if name == "" {
		return "", ErrCommandNotFound
	}

	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", ErrCommandNotFound
	}

	dirs := lo.Compact(strings.Split(searchPath, ":"))
	for _, dir := range dirs {
		path := dir + "/" + name
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", ErrCommandNotFound
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// runExternal starts args[0] as a child process and waits for it. A child
// that ran, whatever its status, puts rawLine in history unless this is a
// replay.
func (s *Shell) runExternal(ctx context.Context, args []string, rawLine string, replay bool, clause redirect.Clause) int {
	path, err := LookPath(args[0], s.searchPath())
	if err != nil {
		s.errorf("wsh: command not found: %s", args[0])
		return StatusNotFound
	}
	s.logger.Debug("resolved command", zap.String("name", args[0]), zap.String("path", path))

	scope, err := redirect.Apply(&s.streams, clause)
	if err != nil {
		s.errorf("wsh: %v", err)
		return StatusFailure
	}
	defer s.restore(scope)

	cmd := exec.CommandContext(ctx, path, args[1:]...)
	cmd.Args[0] = args[0]
	cmd.Env = s.env.Environ()
	cmd.Stdin = s.streams.Stdin
	cmd.Stdout = s.streams.Stdout
	cmd.Stderr = s.streams.Stderr
	cmd.ExtraFiles = s.streams.ExtraFiles()

	started := time.Now()
	var status int
	if err := cmd.Start(); err != nil {
		s.errorf("wsh: %s: %v", args[0], unwrapExecError(err))
		status = StatusCannotExec
	} else {
		status, err = waitStatus(cmd.Wait())
		if err != nil {
			s.errorf("wsh: %s: %v", args[0], err)
		}
	}
	s.logger.Debug("command finished", zap.String("name", args[0]), zap.Int("status", status))

	if !replay && s.history.Add(rawLine) {
		s.logger.Debug("added history entry", zap.String("line", rawLine), zap.Int("count", s.history.Len()))
	}
	s.recordRun(&audit.Run{
		Line:      rawLine,
		Program:   path,
		Redirect:  clause.String(),
		Replay:    replay,
		StartedAt: started,
		Duration:  time.Since(started),
		Status:    status,
	})

	return status
}

// waitStatus turns the result of Wait into a shell status. Only exit and
// termination by signal end a child; an error that is neither is returned.
func waitStatus(err error) (int, error) {
	if err == nil {
		return StatusOK, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return StatusFailure, err
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return statusSignalBase + int(ws.Signal()), nil
	}
	return exitErr.ExitCode(), nil
}

// unwrapExecError strips the "fork/exec <path>:" prefix os/exec adds so the
// message names only the cause.
func unwrapExecError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
