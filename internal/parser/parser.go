// Package parser turns one input line into an argument vector and at most
// one redirection clause.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robottwo/wsh/internal/redirect"
	"github.com/samber/lo"
)

// ErrAmbiguousRedirect is returned when a line carries more than one
// redirection clause.
var ErrAmbiguousRedirect = errors.New("ambiguous redirect: only one redirection per command")

// SyntaxError reports a malformed redirection token.
type SyntaxError struct {
	Token string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error near unexpected token '%s'", e.Token)
}

// Lookup resolves a variable name for $name substitution. It reports false
// when the name is unset everywhere.
type Lookup func(name string) (string, bool)

// Command is a parsed line.
type Command struct {
	Args     []string
	Redirect redirect.Clause
}

// operators are tried in this order. The &-prefixed forms come first so a
// token like "&>>out" is not claimed by the plain ">>" scan.
var operators = []struct {
	token string
	typ   redirect.Type
}{
	{"&>>", redirect.OutputErrAppend},
	{"&>", redirect.OutputErr},
	{">>", redirect.OutputAppend},
	{">", redirect.Output},
	{"<", redirect.Input},
}

// Parse splits line on spaces, substitutes $name tokens through lookup
// and extracts the redirection clause. Substituted values are literal and
// are never scanned for redirections.
func Parse(line string, lookup Lookup) (*Command, error) {
	// Only the space character separates words; a tab stays inside its word.
	tokens := lo.Compact(strings.Split(line, " "))
	cmd := &Command{Args: make([]string, 0, len(tokens))}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if strings.HasPrefix(token, "$") {
			value, _ := lookup(token[1:])
			cmd.Args = append(cmd.Args, value)
			continue
		}

		clause, found, err := scanRedirect(token)
		if err != nil {
			return nil, err
		}
		if !found {
			cmd.Args = append(cmd.Args, token)
			continue
		}

		if clause.Target == "" {
			// "cmd > file": the target is the next token.
			if i+1 >= len(tokens) {
				return nil, &SyntaxError{Token: token}
			}
			next := tokens[i+1]
			if _, isRedirect, _ := scanRedirect(next); isRedirect {
				return nil, &SyntaxError{Token: next}
			}
			clause.Target = next
			i++
		}

		if cmd.Redirect.IsSet() {
			return nil, ErrAmbiguousRedirect
		}
		cmd.Redirect = clause
	}

	return cmd, nil
}

// scanRedirect looks for a redirection operator inside token. Anything in
// front of the operator must be a descriptor number.
func scanRedirect(token string) (redirect.Clause, bool, error) {
	for _, op := range operators {
		pos := strings.Index(token, op.token)
		if pos < 0 {
			continue
		}

		clause := redirect.Clause{
			Type:   op.typ,
			FD:     redirect.DefaultFD(op.typ),
			Target: token[pos+len(op.token):],
		}

		if prefix := token[:pos]; prefix != "" {
			fd, err := parseDescriptor(prefix)
			if err != nil {
				return redirect.Clause{}, true, &SyntaxError{Token: token}
			}
			clause.FD = fd
		}

		return clause, true, nil
	}

	return redirect.Clause{}, false, nil
}

func parseDescriptor(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a descriptor: %q", s)
		}
	}
	// Overflow is left for redirect.Apply to reject as a bad descriptor.
	fd, err := strconv.Atoi(s)
	if err != nil {
		return redirect.MaxFD + 1, nil
	}
	return fd, nil
}
