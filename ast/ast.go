// Package ast defines the closed set of node variants that make up an eco
// program: statements and expressions (expressions are a subfamily of
// statements — any expression may stand alone as a statement). Evaluation
// lives in package runtime and source re-emission lives in package
// bundler; this package is pure data, the way the teacher keeps its ast
// package free of evaluator logic.
package ast

import "github.com/eco-lang/eco/lexer"

// Node is the base of every AST value: it knows where it came from.
type Node interface {
	Pos() lexer.Pos
}

// Statement is anything that can appear in a block's statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Statement that also produces a value. Every Expression
// is usable as an expression-statement.
type Expression interface {
	Statement
	expressionNode()
}

// BaseNode carries the originating token so every node gets Pos() for
// free.
type BaseNode struct {
	Tok lexer.Token
}

func (b BaseNode) Pos() lexer.Pos { return b.Tok.Pos }

// Program is the root of a parsed file: a flat list of top-level
// statements.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() lexer.Pos {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0
}

// VariableKind distinguishes a plain binding target from the two
// destructuring forms.
type VariableKind int

const (
	Identifier VariableKind = iota
	DestructureArray
	DestructureObject
)

// DestructuredValue is one element of an array or object destructure
// pattern.
type DestructuredValue struct {
	Name    string
	Default Expression // nil if no default
	IsRest  bool
	IsHole  bool // array destructure hole, e.g. the ",," in [a, , b]
}

// Variable is a binding target: a plain name or a destructure pattern,
// with an optional default. The same shape serves both a var-decl
// initializer and a function-parameter default.
type Variable struct {
	Kind     VariableKind
	Name     string              // valid when Kind == Identifier
	Elements []DestructuredValue // valid when Kind is a destructure form
	Default  Expression          // nil if absent
}
