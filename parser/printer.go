package parser

import (
	"strings"

	"sexpvm/ast"
)

// Print renders a Node back to source text. A List always prints as
// "(" followed by its printed children space-joined, followed by " )",
// so an empty list prints as "( )" rather than "()".
func Print(node ast.Node) string {
	switch n := node.(type) {
	case ast.Atom:
		return n.Token.Text
	case ast.List:
		parts := make([]string, len(n.Nodes))
		for i, child := range n.Nodes {
			parts[i] = Print(child)
		}
		return "(" + strings.Join(parts, " ") + " )"
	default:
		return ""
	}
}
