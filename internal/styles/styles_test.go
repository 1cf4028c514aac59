package styles

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorNeverIsPlain(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "wsh: oops", ERROR(&buf, Never, "wsh: oops"))
}

func TestAutoIsPlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, "wsh: oops", ERROR(&buf, Auto, "wsh: oops"))
	assert.Equal(t, "Usage:", HEADER(&buf, Auto, "Usage:"))
}

func TestAlwaysAddsEscapes(t *testing.T) {
	var buf bytes.Buffer
	styled := ERROR(&buf, Always, "wsh: oops")
	assert.Contains(t, styled, "wsh: oops")
	assert.Contains(t, styled, "\x1b[")
	assert.NotEqual(t, "wsh: oops", styled)
}
