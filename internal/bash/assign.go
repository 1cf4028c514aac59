package bash

import (
	"fmt"
	"strings"
)

// ParseAssignment splits a NAME=VALUE argument at the first '='.
func ParseAssignment(arg string) (name, value string, err error) {
	name, value, found := strings.Cut(arg, "=")
	if !found || name == "" {
		return "", "", fmt.Errorf("invalid argument: %s", arg)
	}
	return name, value, nil
}
