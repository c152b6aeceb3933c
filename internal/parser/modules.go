package parser

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

// curIsContextual reports whether the current token is an identifier
// spelled like a contextual keyword (`from`, `as`) — these are never
// reserved, so the lexer always hands them back as plain IDENT.
func (p *Parser) curIsContextual(word string) bool {
	return p.cur.Type == lexer.IDENT && p.cur.Literal == word
}

func (p *Parser) expectContextual(word string) {
	if !p.curIsContextual(word) {
		p.errorf("expected %q, got %s", word, p.cur.Type)
		return
	}
	p.next()
}

func (p *Parser) parseImportDeclaration() ast.Statement {
	start := p.pos()
	if !p.isModule {
		p.errorf("import declarations may only appear at the top level of a module")
	}
	p.next() // import

	if p.curIs(lexer.STRING) {
		source := p.cur.Literal
		p.next()
		p.expectSemicolon()
		return &ast.ImportDeclaration{Base: ast.NewBase(start), Source: source}
	}

	decl := &ast.ImportDeclaration{Base: ast.NewBase(start)}

	if p.curIs(lexer.STAR) {
		p.next()
		p.expectContextual("as")
		local := p.cur.Literal
		p.expect(lexer.IDENT)
		decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Local: local, Namespace: true})
	} else {
		if p.curIs(lexer.IDENT) {
			local := p.cur.Literal
			p.next()
			decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Local: local, Default: true})
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		if p.curIs(lexer.LBRACE) {
			p.next()
			for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
				imported := p.cur.Literal
				p.next()
				local := imported
				if p.curIsContextual("as") {
					p.next()
					local = p.cur.Literal
					p.next()
				}
				decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Imported: imported, Local: local})
				if p.curIs(lexer.COMMA) {
					p.next()
				} else {
					break
				}
			}
			p.expect(lexer.RBRACE)
		} else if p.curIs(lexer.STAR) {
			p.next()
			p.expectContextual("as")
			local := p.cur.Literal
			p.expect(lexer.IDENT)
			decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{Local: local, Namespace: true})
		}
	}

	p.expectContextual("from")
	decl.Source = p.cur.Literal
	p.expect(lexer.STRING)
	p.expectSemicolon()
	return decl
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	start := p.pos()
	if !p.isModule {
		p.errorf("export declarations may only appear at the top level of a module")
	}
	p.next() // export

	if p.curIs(lexer.DEFAULT) {
		p.next()
		var decl ast.Node
		switch p.cur.Type {
		case lexer.FUNCTION:
			if p.peekIs(lexer.LPAREN) {
				// Anonymous default export: parse as a function expression.
				decl = p.parseAssignmentExpression()
				p.expectSemicolon()
				break
			}
			decl = p.parseFunctionDeclaration(false)
		case lexer.CLASS:
			decl = p.parseClassDeclaration()
		case lexer.ASYNC:
			if p.peekIs(lexer.FUNCTION) {
				p.next()
				decl = p.parseFunctionDeclaration(true)
				break
			}
			decl = p.parseAssignmentExpression()
			p.expectSemicolon()
		default:
			decl = p.parseAssignmentExpression()
			p.expectSemicolon()
		}
		return &ast.ExportDefaultDeclaration{Base: ast.NewBase(start), Declaration: decl}
	}

	if p.curIs(lexer.STAR) {
		p.next()
		exported := ""
		if p.curIsContextual("as") {
			p.next()
			exported = p.cur.Literal
			p.next()
		}
		p.expectContextual("from")
		source := p.cur.Literal
		p.expect(lexer.STRING)
		p.expectSemicolon()
		return &ast.ExportAllDeclaration{Base: ast.NewBase(start), Exported: exported, Source: source}
	}

	if p.curIs(lexer.LBRACE) {
		p.next()
		var specs []*ast.ExportSpecifier
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			local := p.cur.Literal
			p.next()
			exported := local
			if p.curIsContextual("as") {
				p.next()
				exported = p.cur.Literal
				p.next()
			}
			specs = append(specs, &ast.ExportSpecifier{Base: ast.NewBase(p.pos()), Local: local, Exported: exported})
			if p.curIs(lexer.COMMA) {
				p.next()
			} else {
				break
			}
		}
		p.expect(lexer.RBRACE)
		source := ""
		if p.curIsContextual("from") {
			p.next()
			source = p.cur.Literal
			p.expect(lexer.STRING)
		}
		p.expectSemicolon()
		return &ast.ExportNamedDeclaration{Base: ast.NewBase(start), Specifiers: specs, Source: source}
	}

	var decl ast.Statement
	switch p.cur.Type {
	case lexer.VAR, lexer.CONST, lexer.LET:
		decl = p.parseVariableStatement()
	case lexer.FUNCTION:
		decl = p.parseFunctionDeclaration(false)
	case lexer.CLASS:
		decl = p.parseClassDeclaration()
	case lexer.ASYNC:
		p.next()
		decl = p.parseFunctionDeclaration(true)
	default:
		p.errorf("unexpected token %s after 'export'", p.cur.Type)
	}
	return &ast.ExportNamedDeclaration{Base: ast.NewBase(start), Declaration: decl}
}
