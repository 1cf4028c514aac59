// Package redirect applies a single I/O redirection to the shell's
// descriptor table and puts the table back once the command is done.
package redirect

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Type is the direction of a redirection clause.
type Type int

const (
	None Type = iota
	Input
	Output
	OutputAppend
	OutputErr
	OutputErrAppend
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Input:
		return "<"
	case Output:
		return ">"
	case OutputAppend:
		return ">>"
	case OutputErr:
		return "&>"
	case OutputErrAppend:
		return "&>>"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

const (
	Stdin  = 0
	Stdout = 1
	Stderr = 2

	// MaxFD is the highest descriptor number a clause may name.
	MaxFD = 255
)

var ErrBadDescriptor = errors.New("bad file descriptor")

// Clause is a parsed redirection request: where the data goes, which
// descriptor is rewired and in which direction.
type Clause struct {
	Type   Type
	FD     int
	Target string
}

// IsSet reports whether the clause redirects anything.
func (c Clause) IsSet() bool {
	return c.Type != None
}

// String renders the clause in operator form, such as "2> err.txt". The
// descriptor is shown only when it is not the default. An unset clause is "".
func (c Clause) String() string {
	if !c.IsSet() {
		return ""
	}
	if c.FD != DefaultFD(c.Type) {
		return fmt.Sprintf("%d%s %s", c.FD, c.Type, c.Target)
	}
	return fmt.Sprintf("%s %s", c.Type, c.Target)
}

// DefaultFD returns the descriptor a clause of type t rewires when no
// explicit number is given.
func DefaultFD(t Type) int {
	if t == Input {
		return Stdin
	}
	return Stdout
}

// Streams is the shell's descriptor table. Builtins write to it directly;
// external commands receive it as their standard descriptors, with Extra
// mapped to descriptors 3 and up.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Extra  map[int]*os.File
}

// StdStreams returns the streams of the running process.
func StdStreams() Streams {
	return Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// ExtraFiles lays Extra out the way os/exec expects: index i is descriptor
// 3+i, and holes are left nil so the child sees them closed.
func (s *Streams) ExtraFiles() []*os.File {
	highest := -1
	for fd := range s.Extra {
		if fd > highest {
			highest = fd
		}
	}
	if highest < 3 {
		return nil
	}

	files := make([]*os.File, highest-2)
	for fd, f := range s.Extra {
		if fd >= 3 {
			files[fd-3] = f
		}
	}
	return files
}

type savedSlot struct {
	fd     int
	reader io.Reader
	writer io.Writer
	file   *os.File
	ok     bool
}

func (s *Streams) save(fd int) savedSlot {
	slot := savedSlot{fd: fd}
	switch fd {
	case Stdin:
		slot.reader = s.Stdin
	case Stdout:
		slot.writer = s.Stdout
	case Stderr:
		slot.writer = s.Stderr
	default:
		slot.file, slot.ok = s.Extra[fd]
	}
	return slot
}

func (s *Streams) point(fd int, f *os.File) {
	switch fd {
	case Stdin:
		s.Stdin = f
	case Stdout:
		s.Stdout = f
	case Stderr:
		s.Stderr = f
	default:
		if s.Extra == nil {
			s.Extra = make(map[int]*os.File)
		}
		s.Extra[fd] = f
	}
}

func (s *Streams) restore(slot savedSlot) {
	switch slot.fd {
	case Stdin:
		s.Stdin = slot.reader
	case Stdout:
		s.Stdout = slot.writer
	case Stderr:
		s.Stderr = slot.writer
	default:
		if slot.ok {
			s.Extra[slot.fd] = slot.file
		} else {
			delete(s.Extra, slot.fd)
		}
	}
}

// Scope is one applied redirection. It owns the opened target file and
// remembers the slots it replaced.
type Scope struct {
	streams *Streams
	file    *os.File
	saved   []savedSlot
}

// Apply opens the clause target and points the affected slots of streams at
// it. On error nothing has been changed and no file is left open. A clause
// of type None yields a nil scope.
func Apply(streams *Streams, clause Clause) (*Scope, error) {
	if !clause.IsSet() {
		return nil, nil
	}
	if clause.FD < 0 || clause.FD > MaxFD {
		return nil, fmt.Errorf("%d: %w", clause.FD, ErrBadDescriptor)
	}
	if clause.Target == "" {
		return nil, fmt.Errorf("%s: missing redirection target", clause.Type)
	}

	var (
		flag  int
		slots []int
	)
	switch clause.Type {
	case Input:
		flag = os.O_RDONLY
		slots = []int{clause.FD}
	case Output:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		slots = []int{clause.FD}
	case OutputAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		slots = []int{clause.FD}
	case OutputErr, OutputErrAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if clause.Type == OutputErrAppend {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		slots = []int{clause.FD}
		if clause.FD != Stderr {
			slots = append(slots, Stderr)
		}
	default:
		return nil, fmt.Errorf("unknown redirection type %s", clause.Type)
	}

	file, err := os.OpenFile(clause.Target, flag, 0644)
	if err != nil {
		return nil, err
	}

	scope := &Scope{
		streams: streams,
		file:    file,
	}
	for _, fd := range slots {
		scope.saved = append(scope.saved, streams.save(fd))
		streams.point(fd, file)
	}
	return scope, nil
}

// File returns the opened target, or nil for an empty scope.
func (sc *Scope) File() *os.File {
	if sc == nil {
		return nil
	}
	return sc.file
}

// Restore puts back every slot Apply replaced and closes the target file.
// It is safe on a nil scope and safe to call more than once.
func (sc *Scope) Restore() error {
	if sc == nil || sc.streams == nil {
		return nil
	}

	for i := len(sc.saved) - 1; i >= 0; i-- {
		sc.streams.restore(sc.saved[i])
	}
	sc.streams = nil
	sc.saved = nil

	return sc.file.Close()
}
