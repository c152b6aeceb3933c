package ast

func (*ImportDeclaration) statementNode() {}
func (*ExportNamedDeclaration) statementNode() {}
func (*ExportDefaultDeclaration) statementNode() {}
func (*ExportAllDeclaration) statementNode() {}

// ImportSpecifier covers the three import-clause forms:
//   import Default from "m"              -> {Imported: "", Local: "Default", Default: true}
//   import * as NS from "m"               -> {Imported: "", Local: "NS", Namespace: true}
//   import { a, b as c } from "m"          -> {Imported: "a", Local: "a"} and {Imported: "b", Local: "c"}
type ImportSpecifier struct {
	Base
	Imported  string
	Local     string
	Default   bool
	Namespace bool
}

type ImportDeclaration struct {
	Base
	Specifiers []*ImportSpecifier
	Source     string
}

// ExportSpecifier is one entry of `export { a, b as c }`.
type ExportSpecifier struct {
	Base
	Local    string
	Exported string
}

// ExportNamedDeclaration is either a wrapped declaration
// (`export const x = 1`, Declaration != nil) or a specifier list
// (`export { a, b as c } [from "m"]`, Specifiers != nil).
type ExportNamedDeclaration struct {
	Base
	Declaration Statement
	Specifiers  []*ExportSpecifier
	Source      string // "" unless re-exporting from another module
}

// ExportDefaultDeclaration's Declaration is a *FunctionDeclaration,
// *ClassDeclaration, or any Expression.
type ExportDefaultDeclaration struct {
	Base
	Declaration Node
}

type ExportAllDeclaration struct {
	Base
	Exported string // "" for `export * from "m"`, else `export * as ns from "m"`
	Source   string
}
