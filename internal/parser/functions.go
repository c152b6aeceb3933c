package parser

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

func parseFunctionExpr(p *Parser) ast.Expression {
	start := p.pos()
	p.next() // consume function
	generator := false
	if p.curIs(lexer.STAR) {
		generator = true
		p.next()
	}
	name := ""
	if p.curIs(lexer.IDENT) {
		name = p.cur.Literal
		p.next()
	}
	fn := p.parseFunctionTail(generator, false, name)
	fn.Base = ast.NewBase(start)
	return fn
}

func parseAsyncFunctionOrArrow(p *Parser) ast.Expression {
	start := p.pos()
	p.next() // consume async
	if p.curIs(lexer.FUNCTION) {
		p.next()
		generator := false
		if p.curIs(lexer.STAR) {
			generator = true
			p.next()
		}
		name := ""
		if p.curIs(lexer.IDENT) {
			name = p.cur.Literal
			p.next()
		}
		fn := p.parseFunctionTail(generator, true, name)
		fn.Base = ast.NewBase(start)
		return fn
	}
	arrow := p.parseArrowFunction(true)
	arrow.Base = ast.NewBase(start)
	return arrow
}

// parseFunctionTail parses `(params) { body }` after `function [name]`
// or a method key has already been consumed.
func (p *Parser) parseFunctionTail(generator, async bool, name string) *ast.FunctionExpression {
	params := p.parseParamList()
	fc := &funcContext{generator: generator, async: async, strict: p.fn.strict}
	if p.curIs(lexer.LBRACE) && p.peek.Type == lexer.STRING && p.peek.Literal == "use strict" {
		fc.strict = true
		p.lex.SetStrictMode(true)
	}
	p.pushFunc(fc)
	body := p.parseBlockStatement()
	p.popFunc()
	p.lex.SetStrictMode(p.fn.strict)
	return &ast.FunctionExpression{Params: params, Body: body, Name: name, Generator: generator, Async: async, Strict: fc.strict}
}

func (p *Parser) parseParamList() []ast.Pattern {
	p.expect(lexer.LPAREN)
	var params []ast.Pattern
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			pos := p.pos()
			p.next()
			arg := p.parseBindingTarget()
			params = append(params, &ast.RestElement{Base: ast.NewBase(pos), Argument: arg})
			break
		}
		param := p.parseBindingTarget()
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def := p.parseAssignmentExpression()
			param = &ast.AssignmentPattern{Base: ast.NewBase(param.Pos()), Left: param, Default: def}
		}
		params = append(params, param)
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

// parseParenOrArrow disambiguates `(expr)` from `(params) => body` by
// speculatively parsing as a parameter list and checking for a
// following `=>`; otherwise it rewinds the lexer and re-parses as a
// parenthesized expression via save/restore backtracking.
func parseParenOrArrow(p *Parser) ast.Expression {
	start := p.pos()
	save := p.snapshot()

	// Fast path: try parsing as a parameter list, and only commit to
	// that reading if '=>' actually follows.
	if params, ok := p.tryParseArrowParams(); ok && p.curIs(lexer.ARROW) {
		arrow := p.finishArrowFunction(params, false, start)
		return arrow
	}
	p.restore(save)

	p.expect(lexer.LPAREN)
	if p.curIs(lexer.RPAREN) {
		p.errorf("unexpected empty parentheses")
		p.next()
		return &ast.Identifier{Base: ast.NewBase(start), Name: "(error)"}
	}
	expr := p.parseFullExpression()
	p.expect(lexer.RPAREN)
	return expr
}

// parserSnapshot is a lightweight rewind point covering the token
// cursor, the lexer's own SaveState (to rewind lexical position), and
// the number of errors recorded so far.
type parserSnapshot struct {
	cur, peek  lexer.Token
	lexState   lexer.State
	errCount   int
}

func (p *Parser) snapshot() parserSnapshot {
	return parserSnapshot{cur: p.cur, peek: p.peek, lexState: p.lex.SaveState(), errCount: len(p.errs)}
}

func (p *Parser) restore(s parserSnapshot) {
	p.cur, p.peek = s.cur, s.peek
	p.lex.RestoreState(s.lexState)
	p.errs = p.errs[:s.errCount]
}

func (p *Parser) tryParseArrowParams() ([]ast.Pattern, bool) {
	n := len(p.errs)
	params := p.parseParamList()
	if len(p.errs) != n {
		return params, false
	}
	for _, prm := range params {
		if r, ok := prm.(*ast.RestElement); ok {
			prm = r.Argument
		}
		// A plain parameter must be an identifier name, not `(`, `1`, ...
		if id, ok := prm.(*ast.Identifier); ok {
			if c := (id.Name + " ")[0]; !(c == '_' || c == '$' || c >= 0x80 || (c|0x20 >= 'a' && c|0x20 <= 'z')) {
				return params, false
			}
		}
	}
	return params, true
}

func (p *Parser) parseArrowFunction(async bool) *ast.ArrowFunctionExpression {
	if !p.curIs(lexer.LPAREN) {
		// `async x => body`: a single bare-identifier parameter.
		tok := p.cur
		p.next()
		params := []ast.Pattern{&ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}}
		return p.finishArrowFunction(params, async, tok.Pos)
	}
	params := p.parseParamList()
	return p.finishArrowFunction(params, async, p.pos())
}

func (p *Parser) finishArrowFunction(params []ast.Pattern, async bool, start lexer.Position) *ast.ArrowFunctionExpression {
	p.expect(lexer.ARROW)
	fc := &funcContext{async: async, strict: p.fn.strict}
	p.pushFunc(fc)
	arrow := &ast.ArrowFunctionExpression{Base: ast.NewBase(start), Params: params, Async: async}
	if p.curIs(lexer.LBRACE) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseAssignmentExpression()
		arrow.ExprBody = true
	}
	p.popFunc()
	return arrow
}
