package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robottwo/wsh/internal/completion"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// lineReader yields input lines until io.EOF.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

// promptReader reads lines from a plain stream, printing prompt before each
// one when prompt is non-empty.
type promptReader struct {
	reader *bufio.Reader
	out    io.Writer
	prompt string
}

func newPromptReader(r io.Reader, out io.Writer, prompt string) *promptReader {
	return &promptReader{
		reader: bufio.NewReader(r),
		out:    out,
		prompt: prompt,
	}
}

func (p *promptReader) ReadLine() (string, error) {
	if p.prompt != "" {
		_, _ = io.WriteString(p.out, p.prompt)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			// Last line without a trailing newline
			return line, nil
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func (p *promptReader) Close() error {
	return nil
}

// terminalReader wraps readline for interactive use on a terminal.
type terminalReader struct {
	rl *readline.Instance
}

func newTerminalReader(prompt string, completer readline.AutoCompleter) (*terminalReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &terminalReader{rl: rl}, nil
}

func (t *terminalReader) ReadLine() (string, error) {
	for {
		line, err := t.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C drops the current line
			continue
		}
		return line, err
	}
}

func (t *terminalReader) Close() error {
	return t.rl.Close()
}

// RunInteractiveShell reads commands from stdin, prompting before each line,
// until end of input or exit. It returns the status the process should exit
// with.
func RunInteractiveShell(ctx context.Context, sh *Shell, stdin io.Reader, stdout io.Writer, prompt string, logger *zap.Logger) int {
	var reader lineReader
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tr, err := newTerminalReader(prompt, completion.New(sh.searchPath))
		if err != nil {
			logger.Warn("failed to start line editor, falling back to plain input", zap.Error(err))
			reader = newPromptReader(stdin, stdout, prompt)
		} else {
			reader = tr
		}
	} else {
		reader = newPromptReader(stdin, stdout, prompt)
	}

	return run(ctx, sh, reader, logger)
}

// RunScript executes every line of r without a prompt.
func RunScript(ctx context.Context, sh *Shell, r io.Reader, logger *zap.Logger) int {
	return run(ctx, sh, newPromptReader(r, io.Discard, ""), logger)
}

// RunScriptFile opens path and runs it as a script.
func RunScriptFile(ctx context.Context, sh *Shell, path string, logger *zap.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return StatusFailure, err
	}
	defer func() {
		_ = f.Close()
	}()

	return RunScript(ctx, sh, f, logger), nil
}

func run(ctx context.Context, sh *Shell, reader lineReader, logger *zap.Logger) int {
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Warn("error closing input", zap.Error(err))
		}
	}()

	for !sh.Exited() {
		line, err := reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("error reading input", zap.Error(err))
				sh.errorf("wsh: %v", err)
				return StatusFailure
			}
			logger.Debug("end of input")
			break
		}

		sh.Execute(ctx, line)
	}

	return sh.LastStatus()
}
