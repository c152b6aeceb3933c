package parser

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

// parseBindingTarget parses a declaration's left-hand side: a plain
// identifier or an array/object destructuring pattern. A following
// `= default` or initializer is left for the caller to parse. Used by
// var/let/const declarators, function parameters, and catch clause
// parameters.
func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur.Type {
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		tok := p.cur
		p.next()
		return &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
	}
}

func (p *Parser) parseArrayPattern() ast.Pattern {
	start := p.pos()
	p.next() // [
	pat := &ast.ArrayPattern{Base: ast.NewBase(start)}
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.ELLIPSIS) {
			restPos := p.pos()
			p.next()
			arg := p.parseBindingTarget()
			pat.Elements = append(pat.Elements, &ast.RestElement{Base: ast.NewBase(restPos), Argument: arg})
			break
		}
		elem := p.parseBindingTarget()
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def := p.parseAssignmentExpression()
			elem = &ast.AssignmentPattern{Base: ast.NewBase(elem.Pos()), Left: elem, Default: def}
		}
		pat.Elements = append(pat.Elements, elem)
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return pat
}

func (p *Parser) parseObjectPattern() ast.Pattern {
	start := p.pos()
	p.next() // {
	pat := &ast.ObjectPattern{Base: ast.NewBase(start)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			p.next()
			tok := p.cur
			p.next()
			pat.Rest = &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
			break
		}
		propStart := p.pos()
		key, computed := p.parsePropertyKey()
		var val ast.Pattern
		if p.curIs(lexer.COLON) {
			p.next()
			val = p.parseBindingTarget()
		} else {
			ident, ok := key.(*ast.Identifier)
			if !ok {
				p.errorf("invalid shorthand destructuring property")
				ident = &ast.Identifier{Base: ast.NewBase(propStart), Name: "(error)"}
			}
			val = ident
		}
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def := p.parseAssignmentExpression()
			val = &ast.AssignmentPattern{Base: ast.NewBase(val.Pos()), Left: val, Default: def}
		}
		pat.Properties = append(pat.Properties, &ast.ObjectPatternProperty{
			Base: ast.NewBase(propStart), Key: key, Computed: computed, Value: val,
		})
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return pat
}

// toAssignTarget converts an already-parsed Expression into the
// destructuring-assignment shape required on the left of `=`:
// array/object literals used as assignment targets reinterpret
// their elements as patterns. Simple identifiers and member
// expressions pass through unchanged as assignment targets.
func (p *Parser) toAssignTarget(expr ast.Expression, allowPattern bool) ast.Node {
	switch e := expr.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return e
	case *ast.ArrayLiteral:
		if !allowPattern {
			p.errorf("invalid assignment target")
			return e
		}
		return p.arrayLiteralToPattern(e)
	case *ast.ObjectLiteral:
		if !allowPattern {
			p.errorf("invalid assignment target")
			return e
		}
		return p.objectLiteralToPattern(e)
	default:
		return e
	}
}

func (p *Parser) arrayLiteralToPattern(lit *ast.ArrayLiteral) ast.Pattern {
	pat := &ast.ArrayPattern{Base: ast.NewBase(lit.Pos())}
	for _, el := range lit.Elements {
		if el == nil {
			pat.Elements = append(pat.Elements, nil)
			continue
		}
		pat.Elements = append(pat.Elements, p.exprElementToPattern(el))
	}
	return pat
}

func (p *Parser) exprElementToPattern(el ast.Expression) ast.Pattern {
	switch e := el.(type) {
	case *ast.SpreadElement:
		return &ast.RestElement{Base: ast.NewBase(e.Pos()), Argument: p.exprElementToPattern(e.Argument)}
	case *ast.AssignmentExpression:
		left := p.toAssignTarget(e.Left.(ast.Expression), true)
		return &ast.AssignmentPattern{Base: ast.NewBase(e.Pos()), Left: left.(ast.Pattern), Default: e.Right}
	case *ast.ArrayLiteral:
		return p.arrayLiteralToPattern(e)
	case *ast.ObjectLiteral:
		return p.objectLiteralToPattern(e)
	case *ast.Identifier:
		return e
	case *ast.MemberExpression:
		return e
	default:
		p.errorf("invalid destructuring target")
		return &ast.Identifier{Base: ast.NewBase(el.Pos()), Name: "(error)"}
	}
}

func (p *Parser) objectLiteralToPattern(lit *ast.ObjectLiteral) ast.Pattern {
	pat := &ast.ObjectPattern{Base: ast.NewBase(lit.Pos())}
	for _, prop := range lit.Properties {
		if prop.Kind == ast.PropSpread {
			if ident, ok := prop.Key.(*ast.Identifier); ok {
				pat.Rest = ident
			}
			continue
		}
		val := p.exprElementToPattern(prop.Value)
		pat.Properties = append(pat.Properties, &ast.ObjectPatternProperty{
			Base: ast.NewBase(prop.Pos()), Key: prop.Key, Computed: prop.Computed, Value: val,
		})
	}
	return pat
}

