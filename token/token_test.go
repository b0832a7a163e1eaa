package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "(", OpenParen.String())
	assert.Equal(t, "end of input", EndOfInput.String())
	assert.Equal(t, "unknown token kind", Kind(99).String())
}

func TestNewText(t *testing.T) {
	tok := NewText(Name, ".@$@%789")
	assert.Equal(t, Name, tok.Kind)
	assert.Equal(t, ".@$@%789", tok.Text)
}
