// Package parser implements a recursive-descent / Pratt parser that
// turns a token stream from internal/lexer into the internal/ast
// node tree, built as a prefix/infix parse-function map
// (precedence table + registered parse functions per token type).
package parser

import (
	"fmt"

	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/errors"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

// Precedence levels, lowest to highest, a constant ladder with the
// additions ECMAScript's richer expression
// grammar requires (nullish-coalescing, exponentiation, optional call
// and member).
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGN
	CONDITIONAL
	NULLISH
	LOGICAL_OR
	LOGICAL_AND
	BITWISE_OR
	BITWISE_XOR
	BITWISE_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	POSTFIX
	CALL
	MEMBER
)

// precedences maps infix/postfix operator tokens to their binding
// power. Assignment operators and the conditional `?:` are listed here
// too and dispatched through the infix table like any other operator
// (parseAssignmentExpr, parseConditionalExpr); statement-level
// operators live outside the Pratt table.
var precedences = map[lexer.TokenType]int{
	lexer.QQ:         NULLISH,
	lexer.PIPEPIPE:   LOGICAL_OR,
	lexer.AMPAMP:     LOGICAL_AND,
	lexer.PIPE:       BITWISE_OR,
	lexer.CARET:      BITWISE_XOR,
	lexer.AMP:        BITWISE_AND,
	lexer.EQ:         EQUALITY,
	lexer.NE:         EQUALITY,
	lexer.SEQ:        EQUALITY,
	lexer.SNE:        EQUALITY,
	lexer.LT:         RELATIONAL,
	lexer.GT:         RELATIONAL,
	lexer.LE:         RELATIONAL,
	lexer.GE:         RELATIONAL,
	lexer.INSTANCEOF: RELATIONAL,
	lexer.IN:         RELATIONAL,
	lexer.SHL:        SHIFT,
	lexer.SHR:        SHIFT,
	lexer.USHR:       SHIFT,
	lexer.PLUS:       ADDITIVE,
	lexer.MINUS:      ADDITIVE,
	lexer.STAR:       MULTIPLICATIVE,
	lexer.SLASH:      MULTIPLICATIVE,
	lexer.PERCENT:    MULTIPLICATIVE,
	lexer.STARSTAR:   EXPONENT,
	lexer.QUESTION:   CONDITIONAL,
	lexer.ASSIGN:     ASSIGN,
	lexer.PLUSEQ:     ASSIGN,
	lexer.MINUSEQ:    ASSIGN,
	lexer.STAREQ:     ASSIGN,
	lexer.SLASHEQ:    ASSIGN,
	lexer.PERCENTEQ:  ASSIGN,
	lexer.STARSTAREQ: ASSIGN,
	lexer.SHLEQ:      ASSIGN,
	lexer.SHREQ:      ASSIGN,
	lexer.USHREQ:     ASSIGN,
	lexer.AMPEQ:      ASSIGN,
	lexer.PIPEEQ:     ASSIGN,
	lexer.CARETEQ:    ASSIGN,
	lexer.AMPAMPEQ:   ASSIGN,
	lexer.PIPEPIPEEQ: ASSIGN,
	lexer.QQEQ:       ASSIGN,
	lexer.PLUSPLUS:   POSTFIX,
	lexer.MINUSMINUS: POSTFIX,
	lexer.LPAREN:     CALL,
	lexer.LBRACKET:   MEMBER,
	lexer.DOT:        MEMBER,
	lexer.QDOT:       MEMBER,
	lexer.TEMPLATE:   MEMBER, // tagged template
}

// prefixParseFn parses an expression that begins with the current
// token (literals, unary operators, grouping, `new`, etc.).
type prefixParseFn func(p *Parser) ast.Expression

// infixParseFn parses the continuation of an expression given the
// already-parsed left operand.
type infixParseFn func(p *Parser, left ast.Expression) ast.Expression

// funcContext tracks the nearest enclosing function's grammar
// parameters, since `yield`, `await`, `super`, and `new.target` are
// all valid or invalid depending on what kind of function (if any)
// currently encloses the parser's position.
type funcContext struct {
	strict             bool
	generator          bool
	async              bool
	allowSuperProperty bool
	allowSuperCall     bool
	allowNewTarget     bool
	inClassFieldInit   bool
}

// Parser turns a token stream into an AST, reporting syntax errors
// through errs rather than panicking, so the caller can decide whether
// partial results are still useful (e.g. a lex/parse CLI subcommand
// wants to show every error, not just the first).
type Parser struct {
	lex    *lexer.Lexer
	atoms  *atom.Table
	source string
	file   string

	cur, peek lexer.Token

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn

	errs errors.List

	fn         *funcContext
	fnStack    []*funcContext
	isModule   bool
	inLoop     int
	inSwitch   int
	labels     []string
	privateSet map[string]bool

	allowIn bool
}

// New creates a Parser over source, reporting diagnostics against
// file (used only for error messages).
func New(source, file string, atoms *atom.Table) *Parser {
	p := &Parser{
		lex:        lexer.New(source),
		atoms:      atoms,
		source:     source,
		file:       file,
		fn:         &funcContext{},
		allowIn:    true,
		privateSet: map[string]bool{},
	}
	p.registerPrefixFns()
	p.registerInfixFns()
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.cur.Type != t {
		p.errorf("expected %s, got %s", t, p.cur.Type)
		return p.cur
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) expectSemicolon() {
	if p.curIs(lexer.SEMICOLON) {
		p.next()
		return
	}
	if p.curIs(lexer.RBRACE) || p.curIs(lexer.EOF) || p.cur.HasNewlineBefore {
		return // automatic semicolon insertion
	}
	p.errorf("expected ';', got %s", p.cur.Type)
}

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errs = append(p.errs, errors.New(errors.KindSyntax, p.cur.Pos, msg, p.source, p.file))
}

func (p *Parser) pos() lexer.Position { return p.cur.Pos }

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() errors.List { return p.errs }

// HasErrors reports whether any syntax error was recorded.
func (p *Parser) HasErrors() bool { return len(p.errs) > 0 }

func (p *Parser) pushFunc(fc *funcContext) {
	p.fnStack = append(p.fnStack, p.fn)
	p.fn = fc
}

func (p *Parser) popFunc() {
	n := len(p.fnStack) - 1
	p.fn = p.fnStack[n]
	p.fnStack = p.fnStack[:n]
}

func (p *Parser) intern(s string) atom.Atom { return p.atoms.Intern(s) }

// ParseScript parses a top-level script (non-module) program.
func ParseScript(source, file string, atoms *atom.Table) (*ast.Program, errors.List) {
	p := New(source, file, atoms)
	return p.parseProgram(false), p.errs
}

// ParseScriptStrict parses a top-level script with strict mode forced
// on from the start, for an embedder that wants every script treated
// as if it opened with a "use strict" directive without requiring the
// directive literally appear in the source.
func ParseScriptStrict(source, file string, atoms *atom.Table) (*ast.Program, errors.List) {
	p := New(source, file, atoms)
	p.fn.strict = true
	return p.parseProgram(false), p.errs
}

// ParseModule parses a top-level module program, where import/export
// declarations and strict-mode semantics are in effect throughout.
func ParseModule(source, file string, atoms *atom.Table) (*ast.Program, errors.List) {
	p := New(source, file, atoms)
	p.fn.strict = true
	return p.parseProgram(true), p.errs
}

// ParseExpression parses a single standalone expression, used by the
// `eval`-as-expression entry point some embeddings expose.
func ParseExpression(source, file string, atoms *atom.Table) (ast.Expression, errors.List) {
	p := New(source, file, atoms)
	expr := p.parseExpression(ASSIGN)
	if !p.curIs(lexer.EOF) {
		p.errorf("unexpected trailing token %s", p.cur.Type)
	}
	return expr, p.errs
}

func (p *Parser) parseProgram(isModule bool) *ast.Program {
	p.isModule = isModule
	prog := &ast.Program{IsModule: isModule}
	if p.curIs(lexer.STRING) && p.cur.Literal == "use strict" {
		p.fn.strict = true
		p.lex.SetStrictMode(true)
	}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	prog.Strict = isModule || p.fn.strict
	return prog
}

func (p *Parser) peekPrecedence() int {
	if p.cur.Type == lexer.IN && !p.allowIn {
		// Inside a for-statement init clause, `in` belongs to the
		// for-in grammar, not the relational operator.
		return LOWEST
	}
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}
