// Package lexer turns a character stream into the flat token sequence
// consumed by the parser, walking the input with a small cursor struct
// over a buffer.
package lexer

import (
	"strings"

	"github.com/pkg/errors"
	"sexpvm/token"
)

// LexError is raised for the first INVALID token encountered during Scan.
type LexError struct {
	Text string
}

func (e *LexError) Error() string {
	return "unexpected token " + e.Text
}

const symbolChars = "!$%&*+-./:<=>?@^_~"

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSymbolStart(c byte) bool {
	return isLetter(c) || strings.IndexByte(symbolChars, c) >= 0
}

func isSymbolOrDigit(c byte) bool {
	return isSymbolStart(c) || isDigit(c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	default:
		return false
	}
}

// Lexer walks a source buffer and produces one token at a time.
type Lexer struct {
	src string
	pos int
}

// New creates a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// Next returns the next token in the stream. Once the input is
// exhausted it returns END_OF_INPUT forever.
func (l *Lexer) Next() token.Token {
	for isSpace(l.peekByte()) {
		l.pos++
	}

	c := l.peekByte()
	switch {
	case c == 0:
		return token.New(token.EndOfInput)
	case c == '(':
		l.pos++
		return token.New(token.OpenParen)
	case c == ')':
		l.pos++
		return token.New(token.CloseParen)
	case isDigit(c):
		start := l.pos
		for isDigit(l.peekByte()) {
			l.pos++
		}
		return token.NewText(token.IntLiteral, l.src[start:l.pos])
	case isSymbolStart(c):
		start := l.pos
		for isSymbolOrDigit(l.peekByte()) {
			l.pos++
		}
		return token.NewText(token.Name, l.src[start:l.pos])
	default:
		start := l.pos
		l.pos++
		return token.NewText(token.Invalid, l.src[start:l.pos])
	}
}

// Scan drains the lexer into a full token sequence, terminated by a
// single trailing END_OF_INPUT. It fails with LexError on the first
// INVALID token produced, matching Scanner::scan in the original source.
func Scan(src string) ([]token.Token, error) {
	l := New(src)
	tokens := make([]token.Token, 0, len(src)/2+1)

	for {
		tok := l.Next()
		if tok.Kind == token.EndOfInput {
			break
		}
		if tok.Kind == token.Invalid {
			return nil, errors.WithStack(&LexError{Text: tok.Text})
		}
		tokens = append(tokens, tok)
	}

	tokens = append(tokens, token.New(token.EndOfInput))
	return tokens, nil
}
