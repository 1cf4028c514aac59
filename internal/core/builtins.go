package core

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/robottwo/wsh/internal/bash"
	"github.com/robottwo/wsh/internal/history"
	"github.com/robottwo/wsh/internal/redirect"
	"go.uber.org/zap"
)

// runBuiltin runs kind inside the shell process. The redirection applies to
// the shell's own streams and is undone before returning.
func (s *Shell) runBuiltin(ctx context.Context, kind bash.Kind, args []string, clause redirect.Clause) int {
	scope, err := redirect.Apply(&s.streams, clause)
	if err != nil {
		s.errorf("wsh: %v", err)
		return StatusFailure
	}
	defer s.restore(scope)

	switch kind {
	case bash.Exit:
		return s.builtinExit(args)
	case bash.Cd:
		return s.builtinCd(args)
	case bash.Export:
		return s.builtinExport(args)
	case bash.Local:
		return s.builtinLocal(args)
	case bash.Vars:
		return s.builtinVars()
	case bash.History:
		return s.builtinHistory(ctx, args)
	case bash.Ls:
		return s.builtinLs()
	}

	s.errorf("wsh: %s: not a builtin", args[0])
	return StatusFailure
}

func (s *Shell) builtinExit(args []string) int {
	if len(args) != 1 {
		s.errorf("exit: too many arguments")
		return StatusFailure
	}

	s.Close()
	s.exited = true
	s.logger.Debug("exiting", zap.Int("status", s.lastStatus))
	return s.lastStatus
}

func (s *Shell) builtinCd(args []string) int {
	dir, err := bash.ChangeDir(s.env, args)
	if err != nil {
		s.errorf("cd: %v", err)
		return StatusFailure
	}

	s.logger.Debug("changed directory", zap.String("dir", dir))
	return StatusOK
}

func (s *Shell) builtinExport(args []string) int {
	if len(args) != 2 {
		s.errorf("export: usage: export VAR=value")
		return StatusFailure
	}

	name, value, err := bash.ParseAssignment(args[1])
	if err != nil {
		s.errorf("export: %v", err)
		return StatusFailure
	}
	if err := s.env.Setenv(name, value); err != nil {
		s.errorf("export: %v", err)
		return StatusFailure
	}
	return StatusOK
}

func (s *Shell) builtinLocal(args []string) int {
	if len(args) != 2 {
		s.errorf("local: usage: local VAR=value")
		return StatusFailure
	}

	name, value, err := bash.ParseAssignment(args[1])
	if err != nil {
		s.errorf("local: %v", err)
		return StatusFailure
	}
	if strings.HasPrefix(value, "$") {
		value, _ = s.lookup(value[1:])
	}

	s.vars.Set(name, value)
	return StatusOK
}

func (s *Shell) builtinVars() int {
	for _, v := range s.vars.All() {
		s.printf("%s=%s\n", v.Name, v.Value)
	}
	return StatusOK
}

func (s *Shell) builtinHistory(ctx context.Context, args []string) int {
	switch len(args) {
	case 1:
		for i, entry := range s.history.Entries() {
			s.printf("%d) %s\n", i+1, entry)
		}
		return StatusOK

	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			s.errorf("history: %s: event not found", args[1])
			return StatusFailure
		}
		entry, err := s.history.Recent(n)
		if err != nil {
			if errors.Is(err, history.ErrEventNotFound) {
				s.errorf("history: %s: event not found", args[1])
			} else {
				s.errorf("history: %v", err)
			}
			return StatusFailure
		}

		s.printf("%s\n", entry)
		return s.execute(ctx, entry, true)

	case 3:
		if args[1] != "set" {
			s.errorf("history: usage: history [N | set N]")
			return StatusFailure
		}
		size, err := strconv.Atoi(args[2])
		if err == nil {
			err = s.history.Resize(size)
		}
		if err != nil {
			s.errorf("history: set: invalid size: %s", args[2])
			return StatusFailure
		}

		s.logger.Debug("resized history", zap.Int("size", size), zap.Int("retained", s.history.Len()))
		return StatusOK

	default:
		s.errorf("history: too many arguments")
		return StatusFailure
	}
}

func (s *Shell) builtinLs() int {
	names, err := bash.ListDir(".")
	if err != nil {
		s.errorf("ls: %v", err)
		return StatusFailure
	}

	for _, name := range names {
		s.printf("%s\n", name)
	}
	return StatusOK
}
