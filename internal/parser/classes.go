package parser

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

func parseClassExpr(p *Parser) ast.Expression {
	start := p.pos()
	body := p.parseClassBody()
	return &ast.ClassExpression{Base: ast.NewBase(start), Class: body}
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	start := p.pos()
	body := p.parseClassBody()
	return &ast.ClassDeclaration{Base: ast.NewBase(start), Class: body}
}

func (p *Parser) parseClassBody() *ast.ClassBody {
	start := p.pos()
	p.expect(lexer.CLASS)
	name := ""
	if p.curIs(lexer.IDENT) {
		name = p.cur.Literal
		p.next()
	}
	class := &ast.ClassBody{Base: ast.NewBase(start), Name: name, PrivateNames: map[string]bool{}}
	if p.curIs(lexer.EXTENDS) {
		p.next()
		class.SuperClass = p.parseExpression(CALL)
	}

	savedPrivate := p.privateSet
	p.privateSet = make(map[string]bool, len(savedPrivate))
	for name := range savedPrivate {
		p.privateSet[name] = true
	}

	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.next()
			continue
		}
		class.Elements = append(class.Elements, p.parseClassElement(class))
	}
	p.expect(lexer.RBRACE)
	p.privateSet = savedPrivate
	return class
}

func (p *Parser) parseClassElement(class *ast.ClassBody) ast.ClassElement {
	start := p.pos()
	static := false
	if p.curIs(lexer.STATIC) && !staticIsKeyHere(p.peek.Type) {
		static = true
		p.next()
		if p.curIs(lexer.LBRACE) {
			body := p.parseBlockStatement().Body
			return &ast.StaticBlock{Base: ast.NewBase(start), Body: body}
		}
	}

	async, generator := false, false
	if p.curIs(lexer.ASYNC) && !p.peek.HasNewlineBefore && !staticIsKeyHere(p.peek.Type) {
		async = true
		p.next()
	}
	if p.curIs(lexer.STAR) {
		generator = true
		p.next()
	}

	kind := ast.MethodNormal
	if (p.curIs(lexer.GET) || p.curIs(lexer.SET)) && !staticIsKeyHere(p.peek.Type) {
		if p.curIs(lexer.GET) {
			kind = ast.MethodGetter
		} else {
			kind = ast.MethodSetter
		}
		p.next()
	}

	key, computed, private := p.parseClassKey(class)

	if p.curIs(lexer.LPAREN) {
		if ident, ok := key.(*ast.Identifier); ok && ident.Name == "constructor" && !static && kind == ast.MethodNormal {
			kind = ast.MethodConstructor
		}
		fn := p.parseFunctionTail(generator, async, "")
		return &ast.MethodDefinition{Base: ast.NewBase(start), Kind: kind, Key: key, Computed: computed, Static: static, Private: private, Value: fn}
	}

	var value ast.Expression
	if p.curIs(lexer.ASSIGN) {
		p.next()
		value = p.parseAssignmentExpression()
	}
	p.expectSemicolon()
	return &ast.PropertyDefinition{Base: ast.NewBase(start), Key: key, Computed: computed, Static: static, Private: private, Value: value}
}

func staticIsKeyHere(t lexer.TokenType) bool {
	return t == lexer.LPAREN || t == lexer.ASSIGN || t == lexer.SEMICOLON || t == lexer.RBRACE
}

func (p *Parser) parseClassKey(class *ast.ClassBody) (ast.Expression, bool, bool) {
	if p.curIs(lexer.PRIVATE_ID) {
		tok := p.cur
		p.next()
		class.PrivateNames[tok.Literal] = true
		p.privateSet[tok.Literal] = true
		return &ast.PrivateIdentifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}, false, true
	}
	key, computed := p.parsePropertyKey()
	return key, computed, false
}
