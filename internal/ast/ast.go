// Package ast defines the abstract syntax tree node types produced by
// the parser. Each sum-type family (Expression, Statement, pattern,
// class element) is modelled as a Go interface implemented by a closed
// set of structs, matched with type switches rather than virtual
// dispatch; see DESIGN.md for the rationale.
package ast

import "github.com/go-ecmascript/ecmascript/internal/lexer"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without itself
// producing a value (completion values are tracked separately by the
// compiler for script/eval code).
type Statement interface {
	Node
	statementNode()
}

// Pattern is a binding target: an identifier, or an array/object
// destructuring shape, optionally wrapped in a default or a rest
// element.
type Pattern interface {
	Node
	patternNode()
}

// Base embeds a source position into concrete node structs.
type Base struct {
	Position lexer.Position
}

func (b Base) Pos() lexer.Position { return b.Position }

// NewBase constructs the embeddable position field; every node
// constructor in the parser package uses this instead of poking at
// Base's field directly.
func NewBase(pos lexer.Position) Base { return Base{Position: pos} }

// Program is the root of the tree: either a Script (sloppy/strict top
// level, `var`/function hoisting to the global scope) or a Module
// (strict by default, import/export declarations legal, top-level
// await legal).
type Program struct {
	Base
	Body     []Statement
	IsModule bool
	Strict   bool // "use strict" directive prologue, forced strict, or module
}

// VarKind distinguishes the three declaration forms, each with
// different scoping and TDZ behavior.
type VarKind int

const (
	VarVar VarKind = iota
	VarLet
	VarConst
)

func (k VarKind) String() string {
	switch k {
	case VarVar:
		return "var"
	case VarLet:
		return "let"
	case VarConst:
		return "const"
	default:
		return "var"
	}
}
