package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sexpvm/token"
)

// A digit-leading identifier and runs of closing parens still lex as
// separate, correctly-kinded tokens.
func TestScanDigitLeadingIdentifierAndClosingParenRun(t *testing.T) {
	tokens, err := Scan("123 (0456.@$@%789)))")
	require.NoError(t, err)

	want := []token.Token{
		token.NewText(token.IntLiteral, "123"),
		token.New(token.OpenParen),
		token.NewText(token.IntLiteral, "0456"),
		token.NewText(token.Name, ".@$@%789"),
		token.New(token.CloseParen),
		token.New(token.CloseParen),
		token.New(token.CloseParen),
		token.New(token.EndOfInput),
	}
	assert.Equal(t, want, tokens)
}

func TestScanInvalid(t *testing.T) {
	_, err := Scan("(foo #bar)")
	require.Error(t, err)

	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, "#", lexErr.Text)
}

func TestScanEmpty(t *testing.T) {
	tokens, err := Scan("")
	require.NoError(t, err)
	assert.Equal(t, []token.Token{token.New(token.EndOfInput)}, tokens)
}

func TestScanWhitespaceSkipped(t *testing.T) {
	tokens, err := Scan("  \t\r\n( a\f)  ")
	require.NoError(t, err)
	assert.Equal(t, token.OpenParen, tokens[0].Kind)
	assert.Equal(t, token.Name, tokens[1].Kind)
	assert.Equal(t, "a", tokens[1].Text)
	assert.Equal(t, token.CloseParen, tokens[2].Kind)
}
