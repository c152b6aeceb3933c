package bytecode

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
)

// compileFunction lowers a function/method/getter/setter body to a
// standalone FunctionProto. Its own Compiler is linked to the
// enclosing one via newFunctionCompiler so upvalue resolution can walk
// outward through the lexical chain one frame at a time.
func (c *Compiler) compileFunction(fe *ast.FunctionExpression) *FunctionProto {
	fc := newFunctionCompiler(c, fe.Name, fe.Generator, fe.Async, false)
	fc.chunk.Strict = fe.Strict || c.chunk.Strict
	fc.chunk.IsGenerator = fe.Generator
	fc.chunk.IsAsync = fe.Async
	fc.chunk.ParamCount = len(fe.Params)
	fc.beginScope()
	fc.bindParams(fe.Params)
	for _, stmt := range fe.Body.Body {
		fc.hoistDeclaration(stmt)
	}
	fc.hoistBlockDeclaration(fe.Body.Body)
	for _, stmt := range fe.Body.Body {
		fc.compileStatement(stmt)
	}
	fc.emit(OpReturnUndefined, 0, 0, 0)
	fc.endScope()
	if len(fc.errs) > 0 {
		c.errs = append(c.errs, fc.errs...)
	}
	return &FunctionProto{
		Chunk:    fc.chunk,
		Name:     fe.Name,
		ParamLen: countLeadingSimpleParams(fe.Params),
		HasRest:  fc.chunk.HasRest,
	}
}

// compileArrow lowers an arrow function. Arrows share `this`,
// `arguments`, and `new.target` with their lexical environment instead
// of establishing their own, so the VM instantiates their closures with
// a captured `this` cell rather than binding one per call.
func (c *Compiler) compileArrow(ae *ast.ArrowFunctionExpression) *FunctionProto {
	fc := newFunctionCompiler(c, "", false, ae.Async, true)
	fc.chunk.Strict = c.chunk.Strict
	fc.chunk.IsAsync = ae.Async
	fc.chunk.IsArrow = true
	fc.chunk.ParamCount = len(ae.Params)
	fc.beginScope()
	fc.bindParams(ae.Params)
	switch body := ae.Body.(type) {
	case *ast.BlockStatement:
		for _, stmt := range body.Body {
			fc.hoistDeclaration(stmt)
		}
		fc.hoistBlockDeclaration(body.Body)
		for _, stmt := range body.Body {
			fc.compileStatement(stmt)
		}
		fc.emit(OpReturnUndefined, 0, 0, 0)
	case ast.Expression:
		fc.compileExpression(body)
		fc.emit(OpReturn, 0, 0, body.Pos().Line)
	}
	fc.endScope()
	if len(fc.errs) > 0 {
		c.errs = append(c.errs, fc.errs...)
	}
	return &FunctionProto{
		Chunk:    fc.chunk,
		Name:     "",
		ParamLen: countLeadingSimpleParams(ae.Params),
		HasRest:  fc.chunk.HasRest,
	}
}

// bindParams declares each parameter as a local occupying slots
// 0..N-1 in order, matching the calling convention the VM uses to
// populate a fresh frame from the argument list. Non-identifier
// patterns (defaults, destructuring) get an anonymous slot holding the
// raw argument, then bindPattern distributes it into real locals.
func (c *Compiler) bindParams(params []ast.Pattern) {
	for _, p := range params {
		switch pat := p.(type) {
		case *ast.Identifier:
			c.declareLocal(pat.Name, false, false)
		case *ast.RestElement:
			c.chunk.HasRest = true
			raw := c.declareAnonLocal()
			c.emit(OpLoadLocal, 0, raw, 0)
			c.bindPattern(pat.Argument, false, 0)
		case *ast.AssignmentPattern:
			raw := c.declareAnonLocal()
			c.emit(OpLoadLocal, 0, raw, 0)
			c.emitDefaultIfUndefined(pat.Default, 0)
			c.bindPattern(pat.Left, false, 0)
		default:
			raw := c.declareAnonLocal()
			c.emit(OpLoadLocal, 0, raw, 0)
			c.bindPattern(pat, false, 0)
		}
	}
}

// countLeadingSimpleParams reports how many required positional
// parameters precede the first default/rest/destructuring param, the
// arity the VM needs to know when to stop copying raw call arguments
// straight into slots versus running the general binding path.
func countLeadingSimpleParams(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		if _, ok := p.(*ast.Identifier); !ok {
			break
		}
		n++
	}
	return n
}
