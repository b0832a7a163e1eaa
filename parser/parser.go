// Package parser implements the recursive-descent grammar
//
//	expr ::= list | atom
//	list ::= '(' expr* ')'
//	atom ::= anything but '(' ')' END_OF_INPUT INVALID
//
// grounded on the original Parser.hpp. The parser does not consume
// END_OF_INPUT; callers that expect a single top-level expression must
// check it is the next token via End().
package parser

import (
	"fmt"

	"github.com/pkg/errors"
	"sexpvm/ast"
	"sexpvm/token"
)

// CompilationError carries a human-readable message, the way
// informatter-nilan/compiler/errors.go reports semantic failures as a
// struct rather than a bare sentinel.
type CompilationError struct {
	Message string
}

func (e *CompilationError) Error() string {
	return e.Message
}

// Parser consumes a fixed token slice produced by the lexer.
type Parser struct {
	tokens []token.Token
	cursor int
}

// New creates a Parser positioned at the first token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// End reports whether the next token is END_OF_INPUT.
func (p *Parser) End() bool {
	return p.peek() == token.EndOfInput
}

func (p *Parser) peek() token.Kind {
	return p.tokens[p.cursor].Kind
}

func (p *Parser) current() token.Token {
	return p.tokens[p.cursor]
}

func (p *Parser) expectedTokenError(kind token.Kind) error {
	return errors.WithStack(&CompilationError{
		Message: fmt.Sprintf("expected %q", kind.String()),
	})
}

func (p *Parser) unexpectedTokenError(tok token.Token) error {
	if tok.Kind == token.Invalid {
		return errors.WithStack(&CompilationError{Message: fmt.Sprintf("unexpected %q", tok.Text)})
	}
	return errors.WithStack(&CompilationError{Message: fmt.Sprintf("unexpected %q", tok.Kind.String())})
}

func (p *Parser) readToken(kind token.Kind) (token.Token, error) {
	if p.peek() != kind {
		return token.Token{}, p.expectedTokenError(kind)
	}
	tok := p.current()
	p.cursor++
	return tok, nil
}

func isAtomKind(kind token.Kind) bool {
	return kind != token.CloseParen && kind != token.OpenParen &&
		kind != token.EndOfInput && kind != token.Invalid
}

func (p *Parser) readList() (ast.Node, error) {
	if _, err := p.readToken(token.OpenParen); err != nil {
		return nil, err
	}

	list := ast.List{}
	for p.peek() != token.CloseParen {
		node, err := p.ReadExpr()
		if err != nil {
			return nil, err
		}
		list.Nodes = append(list.Nodes, node)
	}

	if _, err := p.readToken(token.CloseParen); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) readAtom() (ast.Node, error) {
	if !isAtomKind(p.peek()) {
		return nil, p.unexpectedTokenError(p.current())
	}
	tok := p.current()
	p.cursor++
	return ast.Atom{Token: tok}, nil
}

// ReadExpr parses a single expr per the grammar above.
func (p *Parser) ReadExpr() (ast.Node, error) {
	if p.peek() == token.OpenParen {
		return p.readList()
	}
	return p.readAtom()
}

// Parse parses every top-level expression until END_OF_INPUT.
func Parse(tokens []token.Token) ([]ast.Node, error) {
	p := New(tokens)
	var nodes []ast.Node
	for !p.End() {
		node, err := p.ReadExpr()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
