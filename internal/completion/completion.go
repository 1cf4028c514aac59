// Package completion offers tab completion for the interactive line editor.
// The first word completes to a builtin or an executable on the search path;
// later words complete to file names.
package completion

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robottwo/wsh/internal/bash"
	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

// Completer implements readline.AutoCompleter.
type Completer struct {
	searchPath func() string
}

var _ readline.AutoCompleter = (*Completer)(nil)

// New returns a completer that reads the current search path from
// searchPath on every request, so export PATH=... takes effect at once.
func New(searchPath func() string) *Completer {
	return &Completer{searchPath: searchPath}
}

// Do returns the suffixes that complete the word ending at pos, and the
// length of that word.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])
	start := strings.LastIndexAny(head, " \t") + 1
	word := head[start:]

	var candidates []string
	if strings.TrimSpace(head[:start]) == "" && !strings.Contains(word, "/") {
		candidates = c.Commands(word)
	} else {
		candidates = Files(word)
	}

	suffixes := make([][]rune, 0, len(candidates))
	for _, candidate := range candidates {
		suffixes = append(suffixes, []rune(candidate[len(word):]))
	}
	return suffixes, len([]rune(word))
}

// Commands lists builtins and search-path executables starting with prefix.
func (c *Completer) Commands(prefix string) []string {
	names := bash.Names()

	for _, dir := range lo.Compact(strings.Split(c.searchPath(), ":")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name(), prefix) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if info, err := os.Stat(path); err == nil && !info.IsDir() && unix.Access(path, unix.X_OK) == nil {
				names = append(names, entry.Name())
			}
		}
	}

	names = lo.Uniq(lo.Filter(names, func(name string, _ int) bool {
		return strings.HasPrefix(name, prefix)
	}))
	sort.Strings(names)
	return names
}

// Files lists paths starting with word. Directories get a trailing slash and
// dot files are offered only when word names one.
func Files(word string) []string {
	dir, base := filepath.Split(word)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	return lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			return "", false
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			return "", false
		}
		if entry.IsDir() {
			name += "/"
		}
		return dir + name, true
	})
}
