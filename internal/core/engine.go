package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/robottwo/wsh/internal/audit"
	"github.com/robottwo/wsh/internal/bash"
	"github.com/robottwo/wsh/internal/environment"
	"github.com/robottwo/wsh/internal/history"
	"github.com/robottwo/wsh/internal/parser"
	"github.com/robottwo/wsh/internal/redirect"
	"github.com/robottwo/wsh/internal/styles"
	"github.com/robottwo/wsh/internal/vars"
	"go.uber.org/zap"
)

const (
	StatusOK          = 0
	StatusFailure     = 1
	StatusSyntaxError = 2
	StatusCannotExec  = 126
	StatusNotFound    = 127
	statusSignalBase  = 128
)

// Auditor receives every external command the shell runs, once it has
// finished.
type Auditor interface {
	Record(run *audit.Run) error
}

// Shell is one interpreter session. It owns the variable store, the history
// buffer and the descriptor table commands run against. A Shell is not safe
// for concurrent use.
type Shell struct {
	env         environment.Env
	vars        *vars.Store
	history     *history.Buffer
	streams     redirect.Streams
	logger      *zap.Logger
	auditor     Auditor
	color       styles.Mode
	defaultPath string
	sessionID   string

	lastStatus int
	exited     bool
}

type Option func(*Shell)

// WithEnv sets the environment store. The default is the process environment.
func WithEnv(env environment.Env) Option {
	return func(s *Shell) { s.env = env }
}

// WithStreams sets the descriptor table commands start from.
func WithStreams(streams redirect.Streams) Option {
	return func(s *Shell) { s.streams = streams }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithDefaultPath sets the search path used when PATH is unset.
func WithDefaultPath(path string) Option {
	return func(s *Shell) { s.defaultPath = path }
}

func WithAuditor(auditor Auditor) Option {
	return func(s *Shell) { s.auditor = auditor }
}

// WithColor sets when error messages are coloured.
func WithColor(mode styles.Mode) Option {
	return func(s *Shell) { s.color = mode }
}

// NewShell creates a session whose history keeps historySize lines.
func NewShell(historySize int, opts ...Option) (*Shell, error) {
	buffer, err := history.NewBuffer(historySize)
	if err != nil {
		return nil, err
	}

	s := &Shell{
		env:         environment.OSEnv{},
		vars:        vars.NewStore(),
		history:     buffer,
		streams:     redirect.StdStreams(),
		logger:      zap.NewNop(),
		color:       styles.Never,
		defaultPath: "/bin",
		sessionID:   uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Execute runs one input line and returns its status. Blank lines and
// comments are skipped and leave the last status unchanged.
func (s *Shell) Execute(ctx context.Context, line string) int {
	return s.execute(ctx, line, false)
}

func (s *Shell) execute(ctx context.Context, line string, replay bool) int {
	if s.exited {
		return s.lastStatus
	}

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return s.lastStatus
	}

	s.logger.Debug("received command", zap.String("line", line), zap.Bool("replay", replay))

	cmd, err := parser.Parse(line, s.lookup)
	if err != nil {
		s.errorf("wsh: %v", err)
		return s.setStatus(StatusSyntaxError)
	}

	if len(cmd.Args) == 0 {
		// A bare redirection such as "> file" only opens the target.
		return s.setStatus(s.runEmpty(cmd.Redirect))
	}

	kind := bash.Classify(cmd.Args[0])
	s.logger.Debug("classified command",
		zap.String("name", cmd.Args[0]),
		zap.Stringer("builtin", kind),
		zap.Stringer("redirect", cmd.Redirect.Type))

	if kind != bash.NotBuiltin {
		return s.setStatus(s.runBuiltin(ctx, kind, cmd.Args, cmd.Redirect))
	}
	return s.setStatus(s.runExternal(ctx, cmd.Args, line, replay, cmd.Redirect))
}

func (s *Shell) runEmpty(clause redirect.Clause) int {
	scope, err := redirect.Apply(&s.streams, clause)
	if err != nil {
		s.errorf("wsh: %v", err)
		return StatusFailure
	}
	if err := scope.Restore(); err != nil {
		s.errorf("wsh: %v", err)
		return StatusFailure
	}
	return StatusOK
}

// lookup resolves $name: the environment first, then shell-local variables.
func (s *Shell) lookup(name string) (string, bool) {
	if value, ok := s.env.LookupEnv(name); ok {
		return value, true
	}
	return s.vars.Lookup(name)
}

func (s *Shell) searchPath() string {
	if path, ok := s.env.LookupEnv(environment.EnvPath); ok {
		return path
	}
	return s.defaultPath
}

// restore ends a redirection scope. It runs deferred on every exit path of
// a command.
func (s *Shell) restore(scope *redirect.Scope) {
	if err := scope.Restore(); err != nil {
		s.errorf("wsh: %v", err)
	}
}

func (s *Shell) setStatus(status int) int {
	s.lastStatus = status
	return status
}

// errorf reports a user-facing error on the current standard error.
func (s *Shell) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Debug("reported error", zap.String("message", msg))
	_, _ = fmt.Fprintln(s.streams.Stderr, styles.ERROR(s.streams.Stderr, s.color, msg))
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.streams.Stdout, format, args...)
}

func (s *Shell) recordRun(run *audit.Run) {
	if s.auditor == nil {
		return
	}

	run.SessionID = s.sessionID
	run.Directory, _ = os.Getwd()
	if err := s.auditor.Record(run); err != nil {
		s.logger.Warn("failed to record command in audit log", zap.String("line", run.Line), zap.Error(err))
	}
}

// LastStatus returns the status of the most recent command.
func (s *Shell) LastStatus() int {
	return s.lastStatus
}

// Exited reports whether the exit builtin has ended the session.
func (s *Shell) Exited() bool {
	return s.exited
}

// SessionID identifies this session in the audit log.
func (s *Shell) SessionID() string {
	return s.sessionID
}

// History returns the retained command lines, newest first.
func (s *Shell) History() []string {
	return s.history.Entries()
}

// Close drops the shell variables and the history.
func (s *Shell) Close() {
	s.vars.Clear()
	s.history.Clear()
}
