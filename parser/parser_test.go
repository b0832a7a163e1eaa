package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sexpvm/ast"
	"sexpvm/lexer"
)

func parseAll(t *testing.T, src string) []ast.Node {
	t.Helper()
	tokens, err := lexer.Scan(src)
	require.NoError(t, err)
	nodes, err := Parse(tokens)
	require.NoError(t, err)
	return nodes
}

func TestParseAtom(t *testing.T) {
	nodes := parseAll(t, "foo")
	require.Len(t, nodes, 1)
	atom, ok := nodes[0].(ast.Atom)
	require.True(t, ok)
	assert.Equal(t, "foo", atom.Token.Text)
}

func TestParseNestedList(t *testing.T) {
	nodes := parseAll(t, "(a (b c) d)")
	require.Len(t, nodes, 1)
	list, ok := nodes[0].(ast.List)
	require.True(t, ok)
	require.Len(t, list.Nodes, 3)

	inner, ok := list.Nodes[1].(ast.List)
	require.True(t, ok)
	require.Len(t, inner.Nodes, 2)
}

func TestParseEmptyList(t *testing.T) {
	nodes := parseAll(t, "()")
	require.Len(t, nodes, 1)
	list, ok := nodes[0].(ast.List)
	require.True(t, ok)
	assert.Empty(t, list.Nodes)
}

func TestParseMultipleTopLevelExprs(t *testing.T) {
	nodes := parseAll(t, "(a) (b)")
	assert.Len(t, nodes, 2)
}

func TestParseUnexpectedCloseParen(t *testing.T) {
	tokens, err := lexer.Scan(")")
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)

	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)
}

func TestParseUnclosedList(t *testing.T) {
	tokens, err := lexer.Scan("(a b")
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
}
