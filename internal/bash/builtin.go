package bash

import "sort"

// Kind identifies one of the commands the shell implements itself.
type Kind int

const (
	NotBuiltin Kind = iota
	Exit
	Cd
	Export
	Local
	Vars
	History
	Ls
)

var builtinNames = map[string]Kind{
	"exit":    Exit,
	"cd":      Cd,
	"export":  Export,
	"local":   Local,
	"vars":    Vars,
	"history": History,
	"ls":      Ls,
}

// Classify returns the builtin named name, or NotBuiltin.
func Classify(name string) Kind {
	if kind, ok := builtinNames[name]; ok {
		return kind
	}
	return NotBuiltin
}

func (k Kind) String() string {
	for name, kind := range builtinNames {
		if kind == k {
			return name
		}
	}
	return "not-builtin"
}

// Names returns every builtin name in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtinNames))
	for name := range builtinNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
