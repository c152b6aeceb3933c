package bytecode

import (
	"fmt"

	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// CompileError is a single compile-time diagnostic (an early syntax
// error the compiler itself detects, e.g. an unresolved `break`
// target — distinct from parser errors).
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

type localVar struct {
	name     string
	slot     uint16
	depth    int
	isConst  bool
	captured bool
	tdz      bool // true between scope entry and the declaration's initializer running
}

type upvalueRef struct {
	index   uint16
	isLocal bool
	name    string
}

type loopCtx struct {
	label         string
	breakJumps    []int
	continueJumps []int
	continueTarget int
}

type tryCtx struct {
	infoIndex uint16
}

// labelTarget tracks break jumps for a labeled non-loop statement
// (`outer: { ... break outer; ... }`), which loopCtx alone can't
// address since it's not a loop.
type labelTarget struct {
	name       string
	breakJumps []int
}

// Compiler lowers one function body (or the top-level program) into a
// Chunk. Nested functions get their own Compiler linked via enclosing,
// so upvalue resolution can walk outward one frame at a time.
type Compiler struct {
	atoms     *atom.Table
	chunk     *Chunk
	enclosing *Compiler

	locals     []localVar
	scopeDepth int
	upvalues   []upvalueRef

	loopStack []*loopCtx
	tryStack  []*tryCtx

	// pendingLabel carries a label name from compileLabeled to the
	// pushLoop call for the loop statement it immediately wraps, so
	// `outer: for (...)` registers "outer" as that loop's label.
	pendingLabel string
	labelTargets []labelTarget

	isGenerator bool
	isAsync     bool
	isArrow     bool

	// pendingExports collects module exports as statements compile;
	// Compile flushes them as OpExportBinding at the end of the body so
	// each exported slot is published with its final value.
	pendingExports []pendingExport

	errs []error
}

// NewCompiler creates a top-level compiler for script or module code.
func NewCompiler(atoms *atom.Table) *Compiler {
	return &Compiler{atoms: atoms, chunk: NewChunk("<toplevel>")}
}

func newFunctionCompiler(enclosing *Compiler, name string, generator, async, arrow bool) *Compiler {
	return &Compiler{
		atoms:       enclosing.atoms,
		chunk:       NewChunk(name),
		enclosing:   enclosing,
		isGenerator: generator,
		isAsync:     async,
		isArrow:     arrow,
	}
}

// Compile lowers a parsed program to its top-level Chunk.
func Compile(prog *ast.Program, atoms *atom.Table) (*Chunk, error) {
	c := NewCompiler(atoms)
	c.chunk.ModuleBody = prog.IsModule
	c.chunk.Strict = prog.IsModule || prog.Strict
	c.beginScope()
	body := prog.Body
	for _, stmt := range body {
		c.hoistDeclaration(unwrapExport(stmt))
	}
	c.hoistBlockDeclaration(unwrapExports(body))
	if prog.IsModule {
		c.hoistImports(body)
	}
	completionIsExpr := false
	for i, stmt := range body {
		if i == len(body)-1 {
			_, completionIsExpr = stmt.(*ast.ExpressionStatement)
			c.compileLastStatement(stmt)
			continue
		}
		c.compileStatement(stmt)
	}
	if completionIsExpr && len(c.pendingExports) > 0 {
		// Park the completion value so export publication can run with a
		// balanced stack.
		slot := c.declareAnonLocal()
		c.emit(OpStoreLocal, 0, slot, 0)
		c.emit(OpPop, 0, 0, 0)
		c.flushExports()
		c.emit(OpLoadLocal, 0, slot, 0)
	} else {
		c.flushExports()
	}
	if len(body) == 0 {
		c.emit(OpReturnUndefined, 0, 0, 0)
	} else if completionIsExpr {
		c.emit(OpReturn, 0, 0, 0)
	} else {
		c.emit(OpReturnUndefined, 0, 0, 0)
	}
	c.endScope()
	if len(c.errs) > 0 {
		return c.chunk, c.errs[0]
	}
	return c.chunk, nil
}

func (c *Compiler) fail(pos int, format string, args ...any) {
	c.errs = append(c.errs, &CompileError{Message: fmt.Sprintf("line %d: %s", pos, fmt.Sprintf(format, args...))})
}

func (c *Compiler) emit(op OpCode, a byte, b uint16, line int) int {
	return c.chunk.emit(op, a, b, line)
}

func (c *Compiler) emitJump(op OpCode, line int) int {
	return c.chunk.emit(op, 0, 0xFFFF, line)
}

func (c *Compiler) patchJump(pos int) {
	target := len(c.chunk.Code)
	if target > 0xFFFF {
		c.fail(0, "jump target out of range")
		return
	}
	c.chunk.Code[pos].B = uint16(target)
}

func (c *Compiler) emitLoop(start int, line int) {
	c.chunk.emit(OpJump, 0, uint16(start), line)
}

func (c *Compiler) constant(v value.Value) uint16 {
	return c.chunk.addConstant(v)
}

func (c *Compiler) intern(name string) atom.Atom {
	return c.atoms.Intern(name)
}

// --- scopes ---

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		_ = last
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string, isConst bool, tdz bool) uint16 {
	slot := uint16(len(c.locals))
	c.locals = append(c.locals, localVar{name: name, slot: slot, depth: c.scopeDepth, isConst: isConst, tdz: tdz})
	if int(slot)+1 > c.chunk.LocalCount {
		c.chunk.LocalCount = int(slot) + 1
	}
	for len(c.chunk.TDZInit) < int(slot)+1 {
		c.chunk.TDZInit = append(c.chunk.TDZInit, false)
	}
	c.chunk.TDZInit[slot] = tdz
	return slot
}

// lexicalNameInScope reports whether name is already bound in the
// current block (a duplicate lexical declaration, a SyntaxError).
func (c *Compiler) lexicalNameInScope(name string) bool {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			return true
		}
	}
	return false
}

func (c *Compiler) markInitialized(slot uint16) {
	for i := range c.locals {
		if c.locals[i].slot == slot {
			c.locals[i].tdz = false
		}
	}
}

// resolveLocal finds name in this compiler's own frame only.
func (c *Compiler) resolveLocal(name string) (uint16, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue finds name in an enclosing frame, recursively, and
// threads an upvalue chain down to this frame so every intermediate
// closure captures the variable too.
func (c *Compiler) resolveUpvalue(name string) (uint16, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if slot, ok := c.enclosing.resolveLocal(name); ok {
		c.enclosing.locals[localIndexBySlot(c.enclosing.locals, slot)].captured = true
		return c.addUpvalue(slot, true, name), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return c.addUpvalue(idx, false, name), true
	}
	return 0, false
}

func localIndexBySlot(locals []localVar, slot uint16) int {
	for i, l := range locals {
		if l.slot == slot {
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(index uint16, isLocal bool, name string) uint16 {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return uint16(i)
		}
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal, name: name})
	c.chunk.UpvalueDefs = append(c.chunk.UpvalueDefs, UpvalueDef{Index: index, IsLocal: isLocal})
	return uint16(len(c.upvalues) - 1)
}

// --- identifier resolution used throughout expressions/statements ---

type bindingKind int

const (
	bindLocal bindingKind = iota
	bindUpvalue
	bindGlobal
)

func (c *Compiler) resolveIdentifier(name string) (bindingKind, uint16) {
	if slot, ok := c.resolveLocal(name); ok {
		return bindLocal, slot
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		return bindUpvalue, idx
	}
	return bindGlobal, uint16(c.intern(name))
}

func (c *Compiler) emitLoadIdentifier(name string, line int) {
	kind, idx := c.resolveIdentifier(name)
	switch kind {
	case bindLocal:
		c.emit(OpCheckTDZ, 0, idx, line)
		c.emit(OpLoadLocal, 0, idx, line)
	case bindUpvalue:
		c.emit(OpCheckTDZUpvalue, 0, idx, line)
		c.emit(OpLoadUpvalue, 0, idx, line)
	case bindGlobal:
		c.emit(OpLoadGlobal, 0, idx, line)
	}
}

func (c *Compiler) emitStoreIdentifier(name string, line int) {
	kind, idx := c.resolveIdentifier(name)
	switch kind {
	case bindLocal:
		c.emit(OpStoreLocal, 0, idx, line)
	case bindUpvalue:
		c.emit(OpStoreUpvalue, 0, idx, line)
	case bindGlobal:
		c.emit(OpStoreGlobal, 0, idx, line)
	}
}
