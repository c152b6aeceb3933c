package parser

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.VAR, lexer.CONST:
		return p.parseVariableStatement()
	case lexer.LET:
		if isLetDeclaration(p.peek.Type) {
			return p.parseVariableStatement()
		}
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) && !p.peek.HasNewlineBefore {
			p.next()
			return p.parseFunctionDeclaration(true)
		}
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.SEMICOLON:
		start := p.pos()
		p.next()
		return &ast.EmptyStatement{Base: ast.NewBase(start)}
	case lexer.DEBUGGER:
		start := p.pos()
		p.next()
		p.expectSemicolon()
		return &ast.DebuggerStatement{Base: ast.NewBase(start)}
	case lexer.IMPORT:
		if !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.DOT) {
			return p.parseImportDeclaration()
		}
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	}

	if p.curIs(lexer.IDENT) && p.peekIs(lexer.COLON) {
		return p.parseLabeledStatement()
	}

	return p.parseExpressionStatement()
}

func isLetDeclaration(peek lexer.TokenType) bool {
	switch peek {
	case lexer.IDENT, lexer.LBRACKET, lexer.LBRACE, lexer.LET, lexer.YIELD, lexer.AWAIT, lexer.ASYNC,
		lexer.OF, lexer.GET, lexer.SET, lexer.STATIC:
		return true
	}
	return false
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.pos()
	p.expect(lexer.LBRACE)
	block := &ast.BlockStatement{Base: ast.NewBase(start)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		block.Body = append(block.Body, p.parseStatement())
	}
	p.expect(lexer.RBRACE)
	return block
}

func (p *Parser) parseVariableStatement() ast.Statement {
	decl := p.parseVariableDeclaration()
	p.expectSemicolon()
	return decl
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	start := p.pos()
	kind := ast.VarVar
	switch p.cur.Type {
	case lexer.LET:
		kind = ast.VarLet
	case lexer.CONST:
		kind = ast.VarConst
	}
	p.next()

	decl := &ast.VariableDeclaration{Base: ast.NewBase(start), Kind: kind}
	for {
		dstart := p.pos()
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			allowIn := p.allowIn
			p.allowIn = true
			init = p.parseAssignmentExpression()
			p.allowIn = allowIn
		}
		decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{Base: ast.NewBase(dstart), Target: target, Init: init})
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	return decl
}

func (p *Parser) parseFunctionDeclaration(async bool) ast.Statement {
	start := p.pos()
	p.expect(lexer.FUNCTION)
	generator := false
	if p.curIs(lexer.STAR) {
		generator = true
		p.next()
	}
	name := p.cur.Literal
	p.expect(lexer.IDENT)
	fn := p.parseFunctionTail(generator, async, name)
	fn.Base = ast.NewBase(start)
	return &ast.FunctionDeclaration{Base: ast.NewBase(start), Function: fn}
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.pos()
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseFullExpression()
	p.expect(lexer.RPAREN)
	consequent := p.parseStatement()
	var alternate ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		alternate = p.parseStatement()
	}
	return &ast.IfStatement{Base: ast.NewBase(start), Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.pos()
	p.next()
	p.expect(lexer.LPAREN)
	test := p.parseFullExpression()
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.WhileStatement{Base: ast.NewBase(start), Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.pos()
	p.next()
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseFullExpression()
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.SEMICOLON) {
		p.next()
	}
	return &ast.DoWhileStatement{Base: ast.NewBase(start), Body: body, Test: test}
}

// parseForStatement disambiguates the four `for` forms (classic,
// for-in, for-of, for-await-of) by parsing the init clause with
// allow-in disabled and checking what follows it, resolving the
// ambiguous grammar by trying a parse and
// inspecting the token that follows.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.pos()
	p.next() // for
	isAwait := false
	if p.curIs(lexer.AWAIT) {
		isAwait = true
		p.next()
	}
	p.expect(lexer.LPAREN)

	var init ast.Node
	if p.curIs(lexer.SEMICOLON) {
		init = nil
	} else if p.curIs(lexer.VAR) || p.curIs(lexer.CONST) || (p.curIs(lexer.LET) && isLetDeclaration(p.peek.Type)) {
		declStart := p.pos()
		kind := ast.VarVar
		switch p.cur.Type {
		case lexer.LET:
			kind = ast.VarLet
		case lexer.CONST:
			kind = ast.VarConst
		}
		p.next()
		target := p.parseBindingTarget()
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			return p.finishForInOf(start, &ast.VariableDeclaration{
				Base: ast.NewBase(declStart), Kind: kind,
				Declarations: []*ast.VariableDeclarator{{Base: ast.NewBase(declStart), Target: target}},
			}, isAwait)
		}
		decl := &ast.VariableDeclaration{Base: ast.NewBase(declStart), Kind: kind}
		var firstInit ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			p.allowIn = false
			firstInit = p.parseAssignmentExpression()
			p.allowIn = true
		}
		decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{Base: ast.NewBase(declStart), Target: target, Init: firstInit})
		for p.curIs(lexer.COMMA) {
			p.next()
			dstart := p.pos()
			t := p.parseBindingTarget()
			var dInit ast.Expression
			if p.curIs(lexer.ASSIGN) {
				p.next()
				p.allowIn = false
				dInit = p.parseAssignmentExpression()
				p.allowIn = true
			}
			decl.Declarations = append(decl.Declarations, &ast.VariableDeclarator{Base: ast.NewBase(dstart), Target: t, Init: dInit})
		}
		init = decl
	} else {
		p.allowIn = false
		expr := p.parseFullExpression()
		p.allowIn = true
		if p.curIs(lexer.IN) || p.curIs(lexer.OF) {
			return p.finishForInOf(start, p.toAssignTarget(expr, true), isAwait)
		}
		init = expr
	}

	p.expect(lexer.SEMICOLON)
	var test ast.Expression
	if !p.curIs(lexer.SEMICOLON) {
		test = p.parseFullExpression()
	}
	p.expect(lexer.SEMICOLON)
	var update ast.Expression
	if !p.curIs(lexer.RPAREN) {
		update = p.parseFullExpression()
	}
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.ForStatement{Base: ast.NewBase(start), Init: init, Test: test, Update: update, Body: body}
}

func (p *Parser) finishForInOf(start lexer.Position, left ast.Node, isAwait bool) ast.Statement {
	isOf := p.curIs(lexer.OF)
	p.next()
	right := p.parseAssignmentExpression()
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	if isOf {
		return &ast.ForOfStatement{Base: ast.NewBase(start), Left: left, Right: right, Body: body, Await: isAwait}
	}
	return &ast.ForInStatement{Base: ast.NewBase(start), Left: left, Right: right, Body: body}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	start := p.pos()
	p.next()
	label := ""
	if p.curIs(lexer.IDENT) && !p.cur.HasNewlineBefore {
		label = p.cur.Literal
		p.next()
	}
	p.expectSemicolon()
	return &ast.BreakStatement{Base: ast.NewBase(start), Label: label}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	start := p.pos()
	p.next()
	label := ""
	if p.curIs(lexer.IDENT) && !p.cur.HasNewlineBefore {
		label = p.cur.Literal
		p.next()
	}
	p.expectSemicolon()
	return &ast.ContinueStatement{Base: ast.NewBase(start), Label: label}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.pos()
	p.next()
	var arg ast.Expression
	if !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) && !p.cur.HasNewlineBefore {
		arg = p.parseFullExpression()
	}
	p.expectSemicolon()
	return &ast.ReturnStatement{Base: ast.NewBase(start), Argument: arg}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.pos()
	p.next()
	if p.cur.HasNewlineBefore {
		p.errorf("illegal newline after 'throw'")
	}
	arg := p.parseFullExpression()
	p.expectSemicolon()
	return &ast.ThrowStatement{Base: ast.NewBase(start), Argument: arg}
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.pos()
	p.next()
	block := p.parseBlockStatement()
	var handler *ast.CatchClause
	var finally *ast.BlockStatement
	if p.curIs(lexer.CATCH) {
		cstart := p.pos()
		p.next()
		var param ast.Pattern
		if p.curIs(lexer.LPAREN) {
			p.next()
			param = p.parseBindingTarget()
			p.expect(lexer.RPAREN)
		}
		body := p.parseBlockStatement()
		handler = &ast.CatchClause{Base: ast.NewBase(cstart), Param: param, Body: body}
	}
	if p.curIs(lexer.FINALLY) {
		p.next()
		finally = p.parseBlockStatement()
	}
	if handler == nil && finally == nil {
		p.errorf("missing catch or finally after try")
	}
	return &ast.TryStatement{Base: ast.NewBase(start), Block: block, Handler: handler, Finally: finally}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.pos()
	p.next()
	p.expect(lexer.LPAREN)
	disc := p.parseFullExpression()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	p.inSwitch++
	sw := &ast.SwitchStatement{Base: ast.NewBase(start), Discriminant: disc}
	sawDefault := false
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		cstart := p.pos()
		var test ast.Expression
		if p.curIs(lexer.CASE) {
			p.next()
			test = p.parseFullExpression()
		} else {
			p.expect(lexer.DEFAULT)
			if sawDefault {
				p.errorf("a switch statement may have at most one default clause")
			}
			sawDefault = true
		}
		p.expect(lexer.COLON)
		sc := &ast.SwitchCase{Base: ast.NewBase(cstart), Test: test}
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			sc.Consequent = append(sc.Consequent, p.parseStatement())
		}
		sw.Cases = append(sw.Cases, sc)
	}
	p.inSwitch--
	p.expect(lexer.RBRACE)
	return sw
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.pos()
	label := p.cur.Literal
	p.next() // ident
	p.next() // colon
	p.labels = append(p.labels, label)
	body := p.parseStatement()
	p.labels = p.labels[:len(p.labels)-1]
	return &ast.LabeledStatement{Base: ast.NewBase(start), Label: label, Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.pos()
	expr := p.parseFullExpression()
	p.expectSemicolon()
	return &ast.ExpressionStatement{Base: ast.NewBase(start), Expr: expr}
}
