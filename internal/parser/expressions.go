package parser

import (
	"strconv"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

func (p *Parser) registerPrefixFns() {
	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:      parseIdentifierOrAsync,
		lexer.NUMBER:     parseNumberLiteral,
		lexer.BIGINT:     parseBigIntLiteral,
		lexer.STRING:     parseStringLiteral,
		lexer.TEMPLATE:   parseTemplateLiteral,
		lexer.REGEXP:     parseRegexLiteral,
		lexer.TRUE_LIT:   parseBooleanLiteral,
		lexer.FALSE_LIT:  parseBooleanLiteral,
		lexer.NULL_LIT:   parseNullLiteral,
		lexer.THIS:       parseThisExpr,
		lexer.SUPER:      parseSuperExpr,
		lexer.LPAREN:     parseParenOrArrow,
		lexer.LBRACKET:   parseArrayLiteral,
		lexer.LBRACE:     parseObjectLiteral,
		lexer.FUNCTION:   parseFunctionExpr,
		lexer.CLASS:      parseClassExpr,
		lexer.NEW:        parseNewExpr,
		lexer.BANG:       parseUnaryExpr,
		lexer.TILDE:      parseUnaryExpr,
		lexer.PLUS:       parseUnaryExpr,
		lexer.MINUS:      parseUnaryExpr,
		lexer.TYPEOF:     parseUnaryExpr,
		lexer.VOID:       parseUnaryExpr,
		lexer.DELETE:     parseUnaryExpr,
		lexer.PLUSPLUS:   parseUpdatePrefix,
		lexer.MINUSMINUS: parseUpdatePrefix,
		lexer.YIELD:      parseYieldExpr,
		lexer.AWAIT:      parseAwaitExpr,
		lexer.PRIVATE_ID: parsePrivateIdentifierExpr,
		lexer.LET:        parseIdentifierLikeKeyword,
		lexer.OF:         parseIdentifierLikeKeyword,
		lexer.GET:        parseIdentifierLikeKeyword,
		lexer.SET:        parseIdentifierLikeKeyword,
		lexer.STATIC:     parseIdentifierLikeKeyword,
		lexer.ASYNC:      parseIdentifierLikeKeyword,
	}
}

func (p *Parser) registerInfixFns() {
	p.infixFns = map[lexer.TokenType]infixParseFn{}
	for _, t := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT,
		lexer.SHL, lexer.SHR, lexer.USHR, lexer.AMP, lexer.PIPE, lexer.CARET,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.EQ, lexer.NE, lexer.SEQ, lexer.SNE,
		lexer.INSTANCEOF, lexer.IN,
	} {
		p.infixFns[t] = parseBinaryExpr
	}
	p.infixFns[lexer.STARSTAR] = parseExponentExpr
	p.infixFns[lexer.AMPAMP] = parseLogicalExpr
	p.infixFns[lexer.PIPEPIPE] = parseLogicalExpr
	p.infixFns[lexer.QQ] = parseLogicalExpr
	p.infixFns[lexer.QUESTION] = parseConditionalExpr
	p.infixFns[lexer.LPAREN] = parseCallExpr
	p.infixFns[lexer.LBRACKET] = parseComputedMemberExpr
	p.infixFns[lexer.DOT] = parseDotMemberExpr
	p.infixFns[lexer.QDOT] = parseOptionalChainExpr
	p.infixFns[lexer.TEMPLATE] = parseTaggedTemplateExpr
	for _, t := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUSEQ, lexer.MINUSEQ, lexer.STAREQ, lexer.SLASHEQ, lexer.PERCENTEQ,
		lexer.STARSTAREQ, lexer.SHLEQ, lexer.SHREQ, lexer.USHREQ, lexer.AMPEQ, lexer.PIPEEQ, lexer.CARETEQ,
		lexer.AMPAMPEQ, lexer.PIPEPIPEEQ, lexer.QQEQ,
	} {
		p.infixFns[t] = parseAssignmentExpr
	}
	p.infixFns[lexer.PLUSPLUS] = parseUpdatePostfix
	p.infixFns[lexer.MINUSMINUS] = parseUpdatePostfix
}

var assignOps = map[lexer.TokenType]ast.AssignOp{
	lexer.ASSIGN:     ast.AssignPlain,
	lexer.PLUSEQ:     ast.AssignAdd,
	lexer.MINUSEQ:    ast.AssignSub,
	lexer.STAREQ:     ast.AssignMul,
	lexer.SLASHEQ:    ast.AssignDiv,
	lexer.PERCENTEQ:  ast.AssignMod,
	lexer.STARSTAREQ: ast.AssignPow,
	lexer.SHLEQ:      ast.AssignShl,
	lexer.SHREQ:      ast.AssignShr,
	lexer.USHREQ:     ast.AssignUShr,
	lexer.AMPEQ:      ast.AssignBitAnd,
	lexer.PIPEEQ:     ast.AssignBitOr,
	lexer.CARETEQ:    ast.AssignBitXor,
	lexer.AMPAMPEQ:   ast.AssignAnd,
	lexer.PIPEPIPEEQ: ast.AssignOr,
	lexer.QQEQ:       ast.AssignNullish,
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS: ast.BinAdd, lexer.MINUS: ast.BinSub, lexer.STAR: ast.BinMul,
	lexer.SLASH: ast.BinDiv, lexer.PERCENT: ast.BinMod,
	lexer.EQ: ast.BinEq, lexer.NE: ast.BinNe, lexer.SEQ: ast.BinStrictEq, lexer.SNE: ast.BinStrictNe,
	lexer.LT: ast.BinLt, lexer.LE: ast.BinLe, lexer.GT: ast.BinGt, lexer.GE: ast.BinGe,
	lexer.SHL: ast.BinShl, lexer.SHR: ast.BinShr, lexer.USHR: ast.BinUShr,
	lexer.AMP: ast.BinBitAnd, lexer.PIPE: ast.BinBitOr, lexer.CARET: ast.BinBitXor,
	lexer.IN: ast.BinIn, lexer.INSTANCEOF: ast.BinInstanceof,
}

// parseExpression is the Pratt loop: it parses a prefix expression
// then repeatedly extends it with infix/postfix continuations whose
// precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf("unexpected token %s in expression", p.cur.Type)
		tok := p.cur
		p.next()
		return &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: "(error)"}
	}
	left := prefix(p)

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.cur.Type]
		if infix == nil {
			break
		}
		left = infix(p, left)
	}
	return left
}

// parseAssignmentExpression parses one assignment-level expression
// (no top-level comma operator); this is the grammar production used
// everywhere an "AssignmentExpression" is called for (array/object
// elements, call arguments, arrow bodies, property values).
func (p *Parser) parseAssignmentExpression() ast.Expression {
	return p.parseExpression(ASSIGN - 1)
}

// parseFullExpression parses the comma operator's full "Expression"
// production, used at statement level and inside a `for(;;)` clause.
func (p *Parser) parseFullExpression() ast.Expression {
	first := p.parseAssignmentExpression()
	if !p.curIs(lexer.COMMA) {
		return first
	}
	seq := &ast.SequenceExpression{Base: ast.NewBase(first.Pos()), Expressions: []ast.Expression{first}}
	for p.curIs(lexer.COMMA) {
		p.next()
		seq.Expressions = append(seq.Expressions, p.parseAssignmentExpression())
	}
	return seq
}

func canStartArrowParams(t lexer.TokenType) bool { return t == lexer.LPAREN || t == lexer.IDENT }

func parseIdentifierOrAsync(p *Parser) ast.Expression {
	tok := p.cur
	if tok.Literal == "async" && !p.peek.HasNewlineBefore &&
		(p.peekIs(lexer.FUNCTION) || canStartArrowParams(p.peek.Type)) {
		return parseAsyncFunctionOrArrow(p)
	}
	if p.peekIs(lexer.ARROW) && !p.peek.HasNewlineBefore {
		// Single-parameter arrow head with no parentheses: `x => body`.
		p.next()
		params := []ast.Pattern{&ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}}
		return p.finishArrowFunction(params, false, tok.Pos)
	}
	p.next()
	return &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
}

// parseIdentifierLikeKeyword handles contextual keywords (let, of,
// get, set, static, async) used as ordinary identifiers outside the
// syntactic positions where they carry special meaning.
func parseIdentifierLikeKeyword(p *Parser) ast.Expression {
	tok := p.cur
	if tok.Type == lexer.ASYNC && !p.peek.HasNewlineBefore &&
		(p.peekIs(lexer.FUNCTION) || canStartArrowParams(p.peek.Type)) {
		return parseAsyncFunctionOrArrow(p)
	}
	if p.peekIs(lexer.ARROW) && !p.peek.HasNewlineBefore {
		p.next()
		params := []ast.Pattern{&ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}}
		return p.finishArrowFunction(params, false, tok.Pos)
	}
	p.next()
	return &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
}

func parsePrivateIdentifierExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	if !p.privateSet[tok.Literal] {
		p.errorf("private name %s is not declared in an enclosing class body", tok.Literal)
	}
	return &ast.PrivateIdentifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
}

func parseNumberLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	n, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		n = parseNonDecimalNumber(tok.Literal)
	}
	return &ast.NumberLiteral{Base: ast.NewBase(tok.Pos), Value: n}
}

func parseNonDecimalNumber(lit string) float64 {
	clean := strings.ReplaceAll(lit, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		base, clean = 16, clean[2:]
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		base, clean = 8, clean[2:]
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		base, clean = 2, clean[2:]
	}
	n, _ := strconv.ParseUint(clean, base, 64)
	return float64(n)
}

func parseBigIntLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	digits := strings.TrimSuffix(tok.Literal, "n")
	return &ast.BigIntLiteral{Base: ast.NewBase(tok.Pos), Digits: digits}
}

func parseStringLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	return &ast.StringLiteral{Base: ast.NewBase(tok.Pos), Value: tok.Literal}
}

func parseBooleanLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	return &ast.BooleanLiteral{Base: ast.NewBase(tok.Pos), Value: tok.Type == lexer.TRUE_LIT}
}

func parseNullLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	return &ast.NullLiteral{Base: ast.NewBase(tok.Pos)}
}

func parseThisExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	return &ast.ThisExpression{Base: ast.NewBase(tok.Pos)}
}

func parseSuperExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	if !p.curIs(lexer.DOT) && !p.curIs(lexer.LBRACKET) && !p.curIs(lexer.LPAREN) {
		p.errorf("'super' keyword is only valid inside a class")
	}
	return &ast.SuperExpression{Base: ast.NewBase(tok.Pos)}
}

func parseRegexLiteral(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	pattern, flags := splitRegex(tok.Literal)
	return &ast.RegExpLiteral{Base: ast.NewBase(tok.Pos), Pattern: pattern, Flags: flags}
}

func splitRegex(lit string) (string, string) {
	last := strings.LastIndexByte(lit, '/')
	if last <= 0 {
		return lit, ""
	}
	return lit[1:last], lit[last+1:]
}

func parseTemplateLiteral(p *Parser) ast.Expression {
	return buildTemplateLiteral(p)
}

func buildTemplateLiteral(p *Parser) *ast.TemplateLiteral {
	tok := p.cur
	span := tok.Template
	p.next()
	lit := &ast.TemplateLiteral{Base: ast.NewBase(tok.Pos)}
	if span == nil {
		return lit
	}
	lit.Quasis = append([]string(nil), span.Quasis...)
	lit.CookedValid = append([]bool(nil), span.CookedValid...)
	for _, exprSrc := range span.Exprs {
		sub := New(exprSrc, p.file, p.atoms)
		expr := sub.parseFullExpression()
		for _, e := range sub.errs {
			p.errs = append(p.errs, e)
		}
		lit.Exprs = append(lit.Exprs, expr)
	}
	return lit
}

func parseTaggedTemplateExpr(p *Parser, tag ast.Expression) ast.Expression {
	tmpl := buildTemplateLiteral(p)
	return &ast.TaggedTemplate{Base: ast.NewBase(tag.Pos()), Tag: tag, Template: tmpl}
}

func parseArrayLiteral(p *Parser) ast.Expression {
	start := p.pos()
	p.next() // consume [
	arr := &ast.ArrayLiteral{Base: ast.NewBase(start)}
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.COMMA) {
			arr.Elements = append(arr.Elements, nil)
			p.next()
			continue
		}
		if p.curIs(lexer.ELLIPSIS) {
			spreadPos := p.pos()
			p.next()
			arg := p.parseAssignmentExpression()
			arr.Elements = append(arr.Elements, &ast.SpreadElement{Base: ast.NewBase(spreadPos), Argument: arg})
		} else {
			arr.Elements = append(arr.Elements, p.parseAssignmentExpression())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACKET)
	return arr
}

func parseObjectLiteral(p *Parser) ast.Expression {
	start := p.pos()
	p.next() // consume {
	obj := &ast.ObjectLiteral{Base: ast.NewBase(start)}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		obj.Properties = append(obj.Properties, p.parseObjectProperty())
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return obj
}

func (p *Parser) parseObjectProperty() *ast.ObjectProperty {
	start := p.pos()

	if p.curIs(lexer.ELLIPSIS) {
		p.next()
		arg := p.parseAssignmentExpression()
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropSpread, Key: arg}
	}

	isAsync, isGenerator := false, false
	if p.curIs(lexer.ASYNC) && !p.peek.HasNewlineBefore && !objectKeyFollowsDirectly(p.peek.Type) {
		isAsync = true
		p.next()
	}
	if p.curIs(lexer.STAR) {
		isGenerator = true
		p.next()
	}
	if (p.curIs(lexer.GET) || p.curIs(lexer.SET)) && !objectKeyFollowsDirectly(p.peek.Type) {
		kind := ast.PropGet
		if p.curIs(lexer.SET) {
			kind = ast.PropSet
		}
		p.next()
		key, computed := p.parsePropertyKey()
		fn := p.parseFunctionTail(false, false, "")
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: kind, Key: key, Computed: computed, Value: fn}
	}

	key, computed := p.parsePropertyKey()

	if p.curIs(lexer.LPAREN) {
		fn := p.parseFunctionTail(isGenerator, isAsync, "")
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropMethod, Key: key, Computed: computed, Value: fn}
	}

	if p.curIs(lexer.COLON) {
		p.next()
		val := p.parseAssignmentExpression()
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropInit, Key: key, Computed: computed, Value: val}
	}

	// Shorthand: { x } or { x = default } (the latter only legal when
	// later reinterpreted as a destructuring pattern).
	ident, ok := key.(*ast.Identifier)
	if !ok {
		p.errorf("invalid shorthand property")
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropInit, Key: key, Value: key}
	}
	if p.curIs(lexer.ASSIGN) {
		p.next()
		def := p.parseAssignmentExpression()
		val := ast.Expression(&ast.AssignmentExpression{Base: ast.NewBase(start), Op: ast.AssignPlain, Left: ident, Right: def})
		return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropInit, Key: ident, Value: val, Shorthand: true}
	}
	return &ast.ObjectProperty{Base: ast.NewBase(start), Kind: ast.PropInit, Key: ident, Value: ident, Shorthand: true}
}

// objectKeyFollowsDirectly reports whether the token after a
// contextual modifier (async/get/set) is itself a property-key
// terminator, meaning the modifier word was actually the key.
func objectKeyFollowsDirectly(t lexer.TokenType) bool {
	return t == lexer.COLON || t == lexer.LPAREN || t == lexer.COMMA || t == lexer.RBRACE || t == lexer.ASSIGN
}

func (p *Parser) parsePropertyKey() (ast.Expression, bool) {
	if p.curIs(lexer.LBRACKET) {
		p.next()
		expr := p.parseAssignmentExpression()
		p.expect(lexer.RBRACKET)
		return expr, true
	}
	tok := p.cur
	switch tok.Type {
	case lexer.STRING:
		p.next()
		return &ast.StringLiteral{Base: ast.NewBase(tok.Pos), Value: tok.Literal}, false
	case lexer.NUMBER:
		p.next()
		n, _ := strconv.ParseFloat(tok.Literal, 64)
		return &ast.NumberLiteral{Base: ast.NewBase(tok.Pos), Value: n}, false
	case lexer.PRIVATE_ID:
		p.next()
		return &ast.PrivateIdentifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}, false
	default:
		p.next()
		return &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}, false
	}
}

func parseUnaryExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	arg := p.parseExpression(UNARY)
	op := map[lexer.TokenType]ast.UnaryOp{
		lexer.BANG: ast.UnaryNot, lexer.TILDE: ast.UnaryBitNot,
		lexer.PLUS: ast.UnaryPlus, lexer.MINUS: ast.UnaryMinus,
		lexer.TYPEOF: ast.UnaryTypeof, lexer.VOID: ast.UnaryVoid, lexer.DELETE: ast.UnaryDelete,
	}[tok.Type]
	return &ast.UnaryExpression{Base: ast.NewBase(tok.Pos), Op: op, Argument: arg}
}

func parseUpdatePrefix(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	arg := p.parseExpression(UNARY)
	op := ast.UpdateIncrement
	if tok.Type == lexer.MINUSMINUS {
		op = ast.UpdateDecrement
	}
	return &ast.UpdateExpression{Base: ast.NewBase(tok.Pos), Op: op, Argument: arg, Prefix: true}
}

func parseUpdatePostfix(p *Parser, left ast.Expression) ast.Expression {
	tok := p.cur
	if tok.HasNewlineBefore {
		return left // ASI: no line terminator allowed before postfix ++/--
	}
	p.next()
	op := ast.UpdateIncrement
	if tok.Type == lexer.MINUSMINUS {
		op = ast.UpdateDecrement
	}
	return &ast.UpdateExpression{Base: ast.NewBase(left.Pos()), Op: op, Argument: left, Prefix: false}
}

func parseYieldExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	delegate := false
	if p.curIs(lexer.STAR) {
		delegate = true
		p.next()
	}
	y := &ast.YieldExpression{Base: ast.NewBase(tok.Pos), Delegate: delegate}
	if canStartYieldArgument(p) {
		y.Argument = p.parseAssignmentExpression()
	}
	return y
}

func canStartYieldArgument(p *Parser) bool {
	if p.cur.HasNewlineBefore {
		return false
	}
	switch p.cur.Type {
	case lexer.SEMICOLON, lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.COMMA, lexer.COLON, lexer.EOF:
		return false
	}
	return true
}

func parseAwaitExpr(p *Parser) ast.Expression {
	tok := p.cur
	p.next()
	arg := p.parseExpression(UNARY)
	return &ast.AwaitExpression{Base: ast.NewBase(tok.Pos), Argument: arg}
}

func parseBinaryExpr(p *Parser, left ast.Expression) ast.Expression {
	opTok := p.cur
	prec := p.exprPrecedenceOf(opTok.Type)
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Base: ast.NewBase(left.Pos()), Op: binaryOps[opTok.Type], Left: left, Right: right}
}

func parseExponentExpr(p *Parser, left ast.Expression) ast.Expression {
	p.next()
	right := p.parseExpression(EXPONENT - 1) // right-associative
	return &ast.BinaryExpression{Base: ast.NewBase(left.Pos()), Op: ast.BinPow, Left: left, Right: right}
}

func parseLogicalExpr(p *Parser, left ast.Expression) ast.Expression {
	opTok := p.cur
	prec := p.exprPrecedenceOf(opTok.Type)
	p.next()
	right := p.parseExpression(prec)
	op := ast.LogicalAnd
	switch opTok.Type {
	case lexer.PIPEPIPE:
		op = ast.LogicalOr
	case lexer.QQ:
		op = ast.LogicalNullish
	}
	return &ast.LogicalExpression{Base: ast.NewBase(left.Pos()), Op: op, Left: left, Right: right}
}

func parseConditionalExpr(p *Parser, test ast.Expression) ast.Expression {
	p.next() // consume ?
	allowIn := p.allowIn
	p.allowIn = true
	consequent := p.parseAssignmentExpression()
	p.allowIn = allowIn
	p.expect(lexer.COLON)
	alternate := p.parseAssignmentExpression()
	return &ast.ConditionalExpression{Base: ast.NewBase(test.Pos()), Test: test, Consequent: consequent, Alternate: alternate}
}

func parseAssignmentExpr(p *Parser, left ast.Expression) ast.Expression {
	opTok := p.cur
	p.next()
	right := p.parseExpression(ASSIGN - 1) // right-associative
	target := p.toAssignTarget(left, opTok.Type == lexer.ASSIGN)
	return &ast.AssignmentExpression{Base: ast.NewBase(left.Pos()), Op: assignOps[opTok.Type], Left: target, Right: right}
}

func parseCallExpr(p *Parser, callee ast.Expression) ast.Expression {
	start := callee.Pos()
	args := p.parseArguments()
	return &ast.CallExpression{Base: ast.NewBase(start), Callee: callee, Args: args}
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.ELLIPSIS) {
			pos := p.pos()
			p.next()
			args = append(args, &ast.SpreadElement{Base: ast.NewBase(pos), Argument: p.parseAssignmentExpression()})
		} else {
			args = append(args, p.parseAssignmentExpression())
		}
		if p.curIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func parseComputedMemberExpr(p *Parser, obj ast.Expression) ast.Expression {
	p.next() // consume [
	allowIn := p.allowIn
	p.allowIn = true
	prop := p.parseFullExpression()
	p.allowIn = allowIn
	p.expect(lexer.RBRACKET)
	return &ast.MemberExpression{Base: ast.NewBase(obj.Pos()), Object: obj, Property: prop, Computed: true}
}

func parseDotMemberExpr(p *Parser, obj ast.Expression) ast.Expression {
	p.next() // consume .
	var prop ast.Expression
	if p.curIs(lexer.PRIVATE_ID) {
		tok := p.cur
		p.next()
		if !p.privateSet[tok.Literal] {
			p.errorf("private name %s is not declared in an enclosing class body", tok.Literal)
		}
		prop = &ast.PrivateIdentifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
	} else {
		tok := p.cur
		p.next()
		prop = &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
	}
	return &ast.MemberExpression{Base: ast.NewBase(obj.Pos()), Object: obj, Property: prop}
}

// parseOptionalChainExpr parses `?.`, which may introduce a property
// access, a computed access, or a call, and once entered makes every
// subsequent `.`/`[`/`(` in the chain short-circuit together;
// the compiler is responsible for emitting the short-circuit
// jump, this layer only records Optional on each link.
func parseOptionalChainExpr(p *Parser, obj ast.Expression) ast.Expression {
	p.next() // consume ?.
	switch p.cur.Type {
	case lexer.LBRACKET:
		p.next()
		prop := p.parseFullExpression()
		p.expect(lexer.RBRACKET)
		return &ast.MemberExpression{Base: ast.NewBase(obj.Pos()), Object: obj, Property: prop, Computed: true, Optional: true}
	case lexer.LPAREN:
		args := p.parseArguments()
		return &ast.CallExpression{Base: ast.NewBase(obj.Pos()), Callee: obj, Args: args, Optional: true}
	default:
		tok := p.cur
		p.next()
		prop := &ast.Identifier{Base: ast.NewBase(tok.Pos), Name: tok.Literal}
		return &ast.MemberExpression{Base: ast.NewBase(obj.Pos()), Object: obj, Property: prop, Optional: true}
	}
}

func parseNewExpr(p *Parser) ast.Expression {
	start := p.pos()
	p.next() // consume new
	if p.curIs(lexer.DOT) {
		p.next()
		// new.target
		tok := p.expect(lexer.IDENT)
		if tok.Literal != "target" {
			p.errorf("expected 'target' after 'new.'")
		}
		return &ast.Identifier{Base: ast.NewBase(start), Name: "new.target"}
	}
	callee := p.parseExpression(MEMBER)
	var args []ast.Expression
	if p.curIs(lexer.LPAREN) {
		args = p.parseArguments()
	}
	return &ast.NewExpression{Base: ast.NewBase(start), Callee: callee, Args: args}
}

func (p *Parser) exprPrecedenceOf(t lexer.TokenType) int {
	if pr, ok := precedences[t]; ok {
		return pr
	}
	return LOWEST
}
