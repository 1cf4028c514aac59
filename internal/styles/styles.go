package styles

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects when output is coloured.
type Mode string

const (
	Auto   Mode = "auto"
	Always Mode = "always"
	Never  Mode = "never"
)

var (
	ERROR = func(w io.Writer, mode Mode, s string) string {
		out := output(w, mode)
		return out.String(s).
			Foreground(out.Color("9")).
			String()
	}
	HEADER = func(w io.Writer, mode Mode, s string) string {
		out := output(w, mode)
		return out.String(s).
			Foreground(out.Color("11")).
			Bold().
			String()
	}
)

// output picks a colour profile for w. In Auto mode only a terminal gets
// colour, so redirected error output stays plain.
func output(w io.Writer, mode Mode) *termenv.Output {
	switch mode {
	case Always:
		return termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI256))
	case Never:
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(w)
	}
	return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}
