package bytecode

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
)

// hoistDeclaration performs function/script-level hoisting: it walks
// stmt and every nested non-function-boundary construct, collecting
// `var` declarations and function declarations and declaring each as a
// local in the CURRENT function/script scope before any statement
// runs. let/const/class declarations are left alone here; those are
// block-scoped and handled per-block by hoistBlockDeclaration.
func (c *Compiler) hoistDeclaration(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		if s.Kind == ast.VarVar {
			for _, decl := range s.Declarations {
				c.hoistVarPattern(decl.Target)
			}
		}
	case *ast.FunctionDeclaration:
		c.hoistVarName(s.Function.Name)
	case *ast.BlockStatement:
		for _, inner := range s.Body {
			c.hoistDeclaration(inner)
		}
	case *ast.IfStatement:
		c.hoistDeclaration(s.Consequent)
		if s.Alternate != nil {
			c.hoistDeclaration(s.Alternate)
		}
	case *ast.ForStatement:
		if decl, ok := s.Init.(*ast.VariableDeclaration); ok && decl.Kind == ast.VarVar {
			for _, d := range decl.Declarations {
				c.hoistVarPattern(d.Target)
			}
		}
		c.hoistDeclaration(s.Body)
	case *ast.ForInStatement:
		if decl, ok := s.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.VarVar {
			for _, d := range decl.Declarations {
				c.hoistVarPattern(d.Target)
			}
		}
		c.hoistDeclaration(s.Body)
	case *ast.ForOfStatement:
		if decl, ok := s.Left.(*ast.VariableDeclaration); ok && decl.Kind == ast.VarVar {
			for _, d := range decl.Declarations {
				c.hoistVarPattern(d.Target)
			}
		}
		c.hoistDeclaration(s.Body)
	case *ast.WhileStatement:
		c.hoistDeclaration(s.Body)
	case *ast.DoWhileStatement:
		c.hoistDeclaration(s.Body)
	case *ast.TryStatement:
		c.hoistDeclaration(s.Block)
		if s.Handler != nil {
			c.hoistDeclaration(s.Handler.Body)
		}
		if s.Finally != nil {
			c.hoistDeclaration(s.Finally)
		}
	case *ast.SwitchStatement:
		for _, cs := range s.Cases {
			for _, inner := range cs.Consequent {
				c.hoistDeclaration(inner)
			}
		}
	case *ast.LabeledStatement:
		c.hoistDeclaration(s.Body)
	}
}

func (c *Compiler) hoistVarPattern(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.Identifier:
		c.hoistVarName(p.Name)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				c.hoistVarPattern(el)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			c.hoistVarPattern(prop.Value)
		}
		if p.Rest != nil {
			c.hoistVarName(p.Rest.Name)
		}
	case *ast.AssignmentPattern:
		c.hoistVarPattern(p.Left)
	case *ast.RestElement:
		c.hoistVarPattern(p.Argument)
	}
}

func (c *Compiler) hoistVarName(name string) {
	if _, ok := c.resolveLocal(name); ok {
		return
	}
	c.declareLocal(name, false, false)
}

// hoistBlockDeclaration declares this block's own let/const/class
// bindings (TDZ'd until their declaration statement runs) and
// materializes every function declaration's closure value immediately,
// so mutually recursive sibling functions can see one another.
func (c *Compiler) hoistBlockDeclaration(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			if s.Kind != ast.VarVar {
				for _, decl := range s.Declarations {
					c.declareLexicalPattern(decl.Target, s.Kind == ast.VarConst)
				}
			}
		case *ast.ClassDeclaration:
			if c.lexicalNameInScope(s.Class.Name) {
				c.fail(s.Pos().Line, "identifier %q has already been declared", s.Class.Name)
				continue
			}
			c.declareLocal(s.Class.Name, false, true)
		}
	}
	for _, stmt := range stmts {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			c.hoistFunctionValue(fd)
		}
	}
}

func (c *Compiler) declareLexicalPattern(pat ast.Pattern, isConst bool) {
	switch p := pat.(type) {
	case *ast.Identifier:
		if c.lexicalNameInScope(p.Name) {
			c.fail(p.Pos().Line, "identifier %q has already been declared", p.Name)
			return
		}
		c.declareLocal(p.Name, isConst, true)
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				c.declareLexicalPattern(el, isConst)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			c.declareLexicalPattern(prop.Value, isConst)
		}
		if p.Rest != nil {
			c.declareLexicalPattern(p.Rest, isConst)
		}
	case *ast.AssignmentPattern:
		c.declareLexicalPattern(p.Left, isConst)
	case *ast.RestElement:
		c.declareLexicalPattern(p.Argument, isConst)
	}
}

func (c *Compiler) hoistFunctionValue(fd *ast.FunctionDeclaration) {
	line := fd.Pos().Line
	proto := c.compileFunction(fd.Function)
	idx := c.chunk.addFunction(proto)
	c.emit(OpClosure, 0, idx, line)
	c.emitStoreIdentifier(fd.Function.Name, line)
	c.emit(OpPop, 0, 0, line)
}

// compileStatement compiles stmt, leaving the stack exactly as it was
// found (statements never leave a value behind, except the bare
// ExpressionStatement carve-out Compile uses for a script's completion
// value).
func (c *Compiler) compileStatement(stmt ast.Statement) {
	line := stmt.Pos().Line
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expr)
		c.emit(OpPop, 0, 0, line)

	case *ast.BlockStatement:
		c.beginScope()
		for _, inner := range s.Body {
			c.hoistDeclaration(inner)
		}
		c.hoistBlockDeclaration(s.Body)
		for _, inner := range s.Body {
			c.compileStatement(inner)
		}
		c.endScope()

	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(s, line)

	case *ast.FunctionDeclaration:
		// Fully handled by hoisting; nothing to emit at its original
		// position in the statement list.

	case *ast.ClassDeclaration:
		c.emitClass(s.Class, line)
		slot, ok := c.resolveLocal(s.Class.Name)
		if ok {
			c.emit(OpStoreLocal, 0, slot, line)
			c.markInitialized(slot)
		} else {
			c.emit(OpStoreGlobal, 0, uint16(c.intern(s.Class.Name)), line)
		}
		c.emit(OpPop, 0, 0, line)

	case *ast.EmptyStatement:
		// nothing to do

	case *ast.IfStatement:
		c.compileExpression(s.Test)
		elseJump := c.emitJump(OpJumpIfFalse, line)
		c.compileStatement(s.Consequent)
		if s.Alternate != nil {
			endJump := c.emitJump(OpJump, line)
			c.patchJump(elseJump)
			c.compileStatement(s.Alternate)
			c.patchJump(endJump)
		} else {
			c.patchJump(elseJump)
		}

	case *ast.WhileStatement:
		c.compileWhile(s, line)

	case *ast.DoWhileStatement:
		c.compileDoWhile(s, line)

	case *ast.ForStatement:
		c.compileFor(s, line)

	case *ast.ForInStatement:
		c.compileForIn(s, line)

	case *ast.ForOfStatement:
		c.compileForOf(s, line)

	case *ast.BreakStatement:
		c.compileBreak(s, line)

	case *ast.ContinueStatement:
		c.compileContinue(s, line)

	case *ast.ReturnStatement:
		if s.Argument != nil {
			c.compileExpression(s.Argument)
			c.emit(OpReturn, 0, 0, line)
		} else {
			c.emit(OpReturnUndefined, 0, 0, line)
		}

	case *ast.ThrowStatement:
		c.compileExpression(s.Argument)
		c.emit(OpThrow, 0, 0, line)

	case *ast.TryStatement:
		c.compileTry(s, line)

	case *ast.SwitchStatement:
		c.compileSwitch(s, line)

	case *ast.LabeledStatement:
		c.compileLabeled(s, line)

	case *ast.DebuggerStatement:
		// The VM has no debugger hook to pause at; a no-op.

	case *ast.ImportDeclaration:
		// Fully handled by hoistImports; nothing to emit here.

	case *ast.ExportNamedDeclaration:
		c.compileExportNamed(s, line)

	case *ast.ExportDefaultDeclaration:
		c.compileExportDefault(s, line)

	case *ast.ExportAllDeclaration:
		c.compileExportAll(s, line)

	default:
		c.fail(line, "unsupported statement %T", stmt)
	}
}

// compileLastStatement compiles a script's final top-level statement.
// When it's a bare expression statement, the trailing OpPop is omitted
// so the expression's value becomes the script's completion value,
// which is what a REPL or `eval` caller expects back.
func (c *Compiler) compileLastStatement(stmt ast.Statement) {
	if es, ok := stmt.(*ast.ExpressionStatement); ok {
		c.compileExpression(es.Expr)
		return
	}
	c.compileStatement(stmt)
}

func (c *Compiler) compileVariableDeclaration(s *ast.VariableDeclaration, line int) {
	for _, decl := range s.Declarations {
		if decl.Init != nil {
			c.compileExpression(decl.Init)
		} else {
			c.emit(OpLoadUndefined, 0, 0, line)
		}
		if s.Kind == ast.VarVar {
			c.assignTarget(decl.Target, line)
		} else {
			c.bindDeclaredPattern(decl.Target, s.Kind == ast.VarConst, line)
		}
	}
}

// bindDeclaredPattern initializes an already-declared (hoisted)
// let/const binding, clearing its TDZ state, rather than allocating a
// fresh local the way bindPattern does for parameters/catch bindings.
func (c *Compiler) bindDeclaredPattern(pat ast.Pattern, isConst bool, line int) {
	switch p := pat.(type) {
	case *ast.Identifier:
		slot, ok := c.resolveLocal(p.Name)
		if !ok {
			slot = c.declareLocal(p.Name, isConst, false)
		}
		c.emit(OpStoreLocal, 0, slot, line)
		c.emit(OpPop, 0, 0, line)
		c.markInitialized(slot)
	case *ast.ArrayPattern:
		c.assignArrayPatternDeclared(p, isConst, line)
	case *ast.ObjectPattern:
		c.assignObjectPatternDeclared(p, isConst, line)
	default:
		c.bindPattern(pat, isConst, line)
	}
}

func (c *Compiler) assignArrayPatternDeclared(p *ast.ArrayPattern, isConst bool, line int) {
	iterSlot := c.declareAnonLocal()
	c.emit(OpGetIterator, 0, 0, line)
	c.emit(OpStoreLocal, 0, iterSlot, line)
	c.emit(OpPop, 0, 0, line)

	for _, el := range p.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			c.emit(OpLoadLocal, 0, iterSlot, line)
			c.emit(OpIteratorRestArray, 0, 0, line)
			c.bindDeclaredPattern(rest.Argument, isConst, line)
			return
		}
		c.emit(OpLoadLocal, 0, iterSlot, line)
		c.emit(OpIteratorNext, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
		if el == nil {
			c.emit(OpPop, 0, 0, line)
			continue
		}
		if ap, ok := el.(*ast.AssignmentPattern); ok {
			c.emitDefaultIfUndefined(ap.Default, line)
			c.bindDeclaredPattern(ap.Left, isConst, line)
			continue
		}
		c.bindDeclaredPattern(el, isConst, line)
	}
}

func (c *Compiler) assignObjectPatternDeclared(p *ast.ObjectPattern, isConst bool, line int) {
	for _, prop := range p.Properties {
		c.emit(OpDup, 0, 0, line)
		c.emitPropertyKeyLoad(prop.Key, prop.Computed, line)
		c.emit(OpGetPropVal, 0, 0, line)
		if ap, ok := prop.Value.(*ast.AssignmentPattern); ok {
			c.emitDefaultIfUndefined(ap.Default, line)
			c.bindDeclaredPattern(ap.Left, isConst, line)
			continue
		}
		c.bindDeclaredPattern(prop.Value, isConst, line)
	}
	if p.Rest != nil {
		c.emit(OpNewObject, 0, 0, line)
		c.emit(OpSwap, 0, 0, line)
		c.emit(OpCopyDataProperties, 0, 0, line)
		c.bindDeclaredPattern(p.Rest, isConst, line)
		return
	}
	c.emit(OpPop, 0, 0, line)
}

func (c *Compiler) compileWhile(s *ast.WhileStatement, line int) {
	start := len(c.chunk.Code)
	c.compileExpression(s.Test)
	exitJump := c.emitJump(OpJumpIfFalse, line)
	c.pushLoop("")
	c.emit(OpLoopGuard, 0, 0, line)
	c.compileStatement(s.Body)
	c.patchContinueJumps(start)
	c.emitLoop(start, line)
	c.patchJump(exitJump)
	c.patchBreakJumps()
	c.popLoop()
}

func (c *Compiler) compileDoWhile(s *ast.DoWhileStatement, line int) {
	start := len(c.chunk.Code)
	c.pushLoop("")
	c.emit(OpLoopGuard, 0, 0, line)
	c.compileStatement(s.Body)
	continueTarget := len(c.chunk.Code)
	c.patchContinueJumps(continueTarget)
	c.compileExpression(s.Test)
	c.emit(OpJumpIfTrue, 0, uint16(start), line)
	c.patchBreakJumps()
	c.popLoop()
}

func (c *Compiler) compileFor(s *ast.ForStatement, line int) {
	c.beginScope()
	switch init := s.Init.(type) {
	case nil:
	case *ast.VariableDeclaration:
		if init.Kind != ast.VarVar {
			for _, decl := range init.Declarations {
				c.declareLexicalPattern(decl.Target, init.Kind == ast.VarConst)
			}
		}
		c.compileVariableDeclaration(init, line)
	case ast.Expression:
		c.compileExpression(init)
		c.emit(OpPop, 0, 0, line)
	}

	start := len(c.chunk.Code)
	var exitJump int
	hasTest := s.Test != nil
	if hasTest {
		c.compileExpression(s.Test)
		exitJump = c.emitJump(OpJumpIfFalse, line)
	}
	c.pushLoop("")
	c.emit(OpLoopGuard, 0, 0, line)
	c.compileStatement(s.Body)
	continueTarget := len(c.chunk.Code)
	c.patchContinueJumps(continueTarget)
	if s.Update != nil {
		c.compileExpression(s.Update)
		c.emit(OpPop, 0, 0, line)
	}
	c.emitLoop(start, line)
	if hasTest {
		c.patchJump(exitJump)
	}
	c.patchBreakJumps()
	c.popLoop()
	c.endScope()
}

func (c *Compiler) compileForIn(s *ast.ForInStatement, line int) {
	c.compileForInOf(s.Left, s.Right, s.Body, line, false, false)
}

func (c *Compiler) compileForOf(s *ast.ForOfStatement, line int) {
	c.compileForInOf(s.Left, s.Right, s.Body, line, true, s.Await)
}

// compileForInOf implements both `for-in` and `for-of` loops. for-in
// walks enumerable string keys (OpGetIterator on a for-in target yields
// a key iterator at the VM level); for-of walks the
// iteration protocol directly. Both share the same binding/iteration
// choreography once an iterator is in hand.
func (c *Compiler) compileForInOf(left ast.Node, right ast.Expression, body ast.Statement, line int, isOf bool, isAwait bool) {
	c.beginScope()
	c.compileExpression(right)
	if isOf {
		if isAwait {
			c.emit(OpGetAsyncIterator, 0, 0, line)
		} else {
			c.emit(OpGetIterator, 0, 0, line)
		}
	} else {
		c.emit(OpGetIterator, 1, 0, line) // A=1: enumerate-keys mode, not the Symbol.iterator protocol
	}
	iterSlot := c.declareAnonLocal()
	c.emit(OpStoreLocal, 0, iterSlot, line)
	c.emit(OpPop, 0, 0, line)

	start := len(c.chunk.Code)
	c.pushLoop("")
	c.emit(OpLoopGuard, 0, 0, line)
	c.emit(OpLoadLocal, 0, iterSlot, line)
	c.emit(OpIteratorNext, 0, 0, line) // leaves [value, done]
	if isAwait {
		// Await the yielded value, not the done flag under it.
		c.emit(OpSwap, 0, 0, line)
		c.emit(OpAwait, 0, 0, line)
		c.emit(OpSwap, 0, 0, line)
	}
	doneJump := c.emitJump(OpJumpIfTrue, line) // consumes `done`; stack now [value]
	c.bindForTarget(left, line)
	c.compileStatement(body)
	c.patchContinueJumps(len(c.chunk.Code))
	c.emitLoop(start, line)
	c.patchJump(doneJump)
	c.emit(OpPop, 0, 0, line) // drop the final iterator value pushed alongside `done`
	if isOf {
		// A break exits before the iterator reports done, so it must run
		// the iterator's `return` hook; normal exhaustion must not.
		endJump := c.emitJump(OpJump, line)
		c.patchBreakJumps()
		c.emit(OpLoadLocal, 0, iterSlot, line)
		c.emit(OpIteratorClose, 0, 0, line)
		c.patchJump(endJump)
	} else {
		c.patchBreakJumps()
	}
	c.popLoop()
	c.endScope()
}

func (c *Compiler) bindForTarget(left ast.Node, line int) {
	switch l := left.(type) {
	case *ast.VariableDeclaration:
		target := l.Declarations[0].Target
		if l.Kind == ast.VarVar {
			c.assignTarget(target, line)
		} else {
			c.declareLexicalPattern(target, l.Kind == ast.VarConst)
			c.bindDeclaredPattern(target, l.Kind == ast.VarConst, line)
		}
	default:
		c.assignTarget(left, line)
	}
}

func (c *Compiler) compileTry(s *ast.TryStatement, line int) {
	info := TryInfo{HasCatch: s.Handler != nil, HasFinally: s.Finally != nil}
	infoIdx := c.chunk.addTryInfo(info)
	pushPos := c.emit(OpPushTry, 0, infoIdx, line)
	c.compileStatement(s.Block)
	c.emit(OpPopTry, 0, 0, line)
	endJump := c.emitJump(OpJump, line)

	catchTarget := len(c.chunk.Code)
	if s.Handler != nil {
		c.emit(OpPushCatch, 0, 0, line)
		c.beginScope()
		if s.Handler.Param != nil {
			c.bindPattern(s.Handler.Param, false, line)
		} else {
			c.emit(OpPop, 0, 0, line) // discard the exception value, no binding requested
		}
		for _, inner := range s.Handler.Body.Body {
			c.hoistDeclaration(inner)
		}
		c.hoistBlockDeclaration(s.Handler.Body.Body)
		for _, inner := range s.Handler.Body.Body {
			c.compileStatement(inner)
		}
		c.endScope()
	}
	c.patchJump(endJump)

	finallyTarget := len(c.chunk.Code)
	if s.Finally != nil {
		c.compileStatement(s.Finally)
		c.emit(OpFinallyEnd, 0, 0, line)
	}

	ti := &c.chunk.TryInfos[infoIdx]
	ti.CatchTarget = catchTarget
	ti.FinallyTarget = finallyTarget
	_ = pushPos
}

func (c *Compiler) compileSwitch(s *ast.SwitchStatement, line int) {
	c.compileExpression(s.Discriminant)
	discSlot := c.declareAnonLocal()
	c.emit(OpStoreLocal, 0, discSlot, line)
	c.emit(OpPop, 0, 0, line)

	c.beginScope()
	var allStmts []ast.Statement
	for _, cs := range s.Cases {
		allStmts = append(allStmts, cs.Consequent...)
	}
	for _, inner := range allStmts {
		c.hoistDeclaration(inner)
	}
	c.hoistBlockDeclaration(allStmts)

	c.pushLoop("") // switch uses the loop stack purely for `break` targets
	var caseJumps []int
	defaultIdx := -1
	for i, cs := range s.Cases {
		if cs.Test == nil {
			defaultIdx = i
			caseJumps = append(caseJumps, -1)
			continue
		}
		c.emit(OpLoadLocal, 0, discSlot, line)
		c.compileExpression(cs.Test)
		c.emit(OpStrictEq, 0, 0, line)
		caseJumps = append(caseJumps, c.emitJump(OpJumpIfTrue, line))
	}
	var fallToDefault int
	if defaultIdx >= 0 {
		fallToDefault = c.emitJump(OpJump, line)
	} else {
		fallToDefault = c.emitJump(OpJump, line)
	}

	caseStarts := make([]int, len(s.Cases))
	for i, cs := range s.Cases {
		caseStarts[i] = len(c.chunk.Code)
		for _, inner := range cs.Consequent {
			c.compileStatement(inner)
		}
	}
	endPos := len(c.chunk.Code)

	for i, jump := range caseJumps {
		if jump >= 0 {
			c.chunk.Code[jump].B = uint16(caseStarts[i])
		}
	}
	if defaultIdx >= 0 {
		c.chunk.Code[fallToDefault].B = uint16(caseStarts[defaultIdx])
	} else {
		c.chunk.Code[fallToDefault].B = uint16(endPos)
	}

	c.patchBreakJumps()
	c.popLoop()
	c.endScope()
}

func (c *Compiler) compileLabeled(s *ast.LabeledStatement, line int) {
	switch s.Body.(type) {
	case *ast.ForStatement, *ast.ForInStatement, *ast.ForOfStatement, *ast.WhileStatement, *ast.DoWhileStatement:
		c.pendingLabel = s.Label
		c.compileStatement(s.Body)
	default:
		c.labelTargets = append(c.labelTargets, labelTarget{name: s.Label, breakJumps: nil})
		c.compileStatement(s.Body)
		lt := c.labelTargets[len(c.labelTargets)-1]
		c.labelTargets = c.labelTargets[:len(c.labelTargets)-1]
		end := len(c.chunk.Code)
		for _, j := range lt.breakJumps {
			c.chunk.Code[j].B = uint16(end)
		}
	}
}

func (c *Compiler) compileBreak(s *ast.BreakStatement, line int) {
	if s.Label != "" {
		for i := len(c.labelTargets) - 1; i >= 0; i-- {
			if c.labelTargets[i].name == s.Label {
				j := c.emitJump(OpJump, line)
				c.labelTargets[i].breakJumps = append(c.labelTargets[i].breakJumps, j)
				return
			}
		}
		for i := len(c.loopStack) - 1; i >= 0; i-- {
			if c.loopStack[i].label == s.Label {
				j := c.emitJump(OpJump, line)
				c.loopStack[i].breakJumps = append(c.loopStack[i].breakJumps, j)
				return
			}
		}
		c.fail(line, "undefined label %q", s.Label)
		return
	}
	if len(c.loopStack) == 0 {
		c.fail(line, "illegal break statement")
		return
	}
	lp := c.loopStack[len(c.loopStack)-1]
	j := c.emitJump(OpJump, line)
	lp.breakJumps = append(lp.breakJumps, j)
}

func (c *Compiler) compileContinue(s *ast.ContinueStatement, line int) {
	if len(c.loopStack) == 0 {
		c.fail(line, "illegal continue statement")
		return
	}
	idx := len(c.loopStack) - 1
	if s.Label != "" {
		found := false
		for i := len(c.loopStack) - 1; i >= 0; i-- {
			if c.loopStack[i].label == s.Label {
				idx = i
				found = true
				break
			}
		}
		if !found {
			c.fail(line, "undefined label %q", s.Label)
			return
		}
	}
	j := c.emitJump(OpJump, line)
	c.loopStack[idx].continueJumps = append(c.loopStack[idx].continueJumps, j)
}

// --- loop bookkeeping ---

func (c *Compiler) pushLoop(label string) {
	l := label
	if c.pendingLabel != "" {
		l = c.pendingLabel
		c.pendingLabel = ""
	}
	c.loopStack = append(c.loopStack, &loopCtx{label: l})
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Compiler) patchBreakJumps() {
	lp := c.loopStack[len(c.loopStack)-1]
	end := len(c.chunk.Code)
	for _, j := range lp.breakJumps {
		c.chunk.Code[j].B = uint16(end)
	}
}

func (c *Compiler) patchContinueJumps(target int) {
	lp := c.loopStack[len(c.loopStack)-1]
	for _, j := range lp.continueJumps {
		c.chunk.Code[j].B = uint16(target)
	}
	lp.continueJumps = nil
}
