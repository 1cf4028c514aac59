package bash

import (
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ListDir returns the names in dir that do not start with a dot, sorted.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return entry.Name(), !strings.HasPrefix(entry.Name(), ".")
	})
	sort.Strings(names)
	return names, nil
}
