package history

import (
	"errors"
	"fmt"
)

// DefaultSize is the capacity a new shell session starts with.
const DefaultSize = 5

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidSize   = errors.New("invalid size")
)

// Buffer is a fixed-capacity ring of command lines. Once full, adding a line
// overwrites the oldest one. Logical order is insertion order; start marks
// the physical slot of the oldest retained entry.
type Buffer struct {
	commands []string
	start    int
	count    int
}

func NewBuffer(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, capacity)
	}

	return &Buffer{
		commands: make([]string, capacity),
	}, nil
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	return b.count
}

// Cap returns the current capacity.
func (b *Buffer) Cap() int {
	return len(b.commands)
}

// Add appends command. A command equal to the most recent entry is dropped
// and Add reports false.
func (b *Buffer) Add(command string) bool {
	if b.count > 0 && b.commands[b.index(b.count-1)] == command {
		return false
	}

	if b.count == len(b.commands) {
		// Evict the oldest entry; its slot becomes the newest.
		b.commands[b.start] = command
		b.start = (b.start + 1) % len(b.commands)
		return true
	}

	b.commands[b.index(b.count)] = command
	b.count++
	return true
}

// Recent returns the nth most recent entry, where 1 is the newest.
func (b *Buffer) Recent(n int) (string, error) {
	if n <= 0 || n > b.count {
		return "", fmt.Errorf("%d: %w", n, ErrEventNotFound)
	}

	return b.commands[b.index(b.count-n)], nil
}

// Entries returns the retained entries, newest first.
func (b *Buffer) Entries() []string {
	out := make([]string, 0, b.count)
	for i := b.count - 1; i >= 0; i-- {
		out = append(out, b.commands[b.index(i)])
	}
	return out
}

// Resize changes the capacity to size. The most recent min(count, size)
// entries are kept and laid out from slot 0 again.
func (b *Buffer) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	keep := b.count
	if keep > size {
		keep = size
	}

	commands := make([]string, size)
	first := b.count - keep
	for i := 0; i < keep; i++ {
		commands[i] = b.commands[b.index(first+i)]
	}

	b.commands = commands
	b.start = 0
	b.count = keep
	return nil
}

// Clear drops every entry but keeps the capacity.
func (b *Buffer) Clear() {
	b.commands = make([]string, len(b.commands))
	b.start = 0
	b.count = 0
}

// index maps a logical position (0 is oldest) to its physical slot.
func (b *Buffer) index(logical int) int {
	return (b.start + logical) % len(b.commands)
}
