package bytecode

import (
	"math/big"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// compileExpression compiles e, leaving exactly its value on top of
// the stack.
func (c *Compiler) compileExpression(e ast.Expression) {
	line := e.Pos().Line
	switch ex := e.(type) {
	case *ast.Identifier:
		c.compileIdentifierRef(ex, line)

	case *ast.PrivateIdentifier:
		// Bare private-name references only occur as the LHS of `in`
		// (`#x in obj`); the RHS of `obj.#x` is handled by MemberExpression.
		c.emit(OpLoadConst, 0, c.constant(value.String(ex.Name)), line)

	case *ast.NumberLiteral:
		c.emit(OpLoadConst, 0, c.constant(value.Number(ex.Value)), line)

	case *ast.BigIntLiteral:
		c.emit(OpLoadConst, 0, c.constant(bigIntFromDigits(ex.Digits)), line)

	case *ast.StringLiteral:
		c.emit(OpLoadConst, 0, c.constant(value.String(ex.Value)), line)

	case *ast.BooleanLiteral:
		if ex.Value {
			c.emit(OpLoadTrue, 0, 0, line)
		} else {
			c.emit(OpLoadFalse, 0, 0, line)
		}

	case *ast.NullLiteral:
		c.emit(OpLoadNull, 0, 0, line)

	case *ast.ThisExpression:
		c.emit(OpLoadThis, 0, 0, line)

	case *ast.SuperExpression:
		// Bare `super` only appears as the callee of a super call or the
		// object of a super member access; both handlers compile it
		// implicitly via OpSuperCall/OpSuperGetProp rather than reaching
		// this case directly.
		c.fail(line, "'super' keyword is only valid inside a class")

	case *ast.RegExpLiteral:
		// Regex compilation itself is an external collaborator's
		// responsibility; the engine hands the literal source through
		// unevaluated for that collaborator to construct lazily.
		c.emit(OpLoadConst, 0, c.constant(value.String("/"+ex.Pattern+"/"+ex.Flags)), line)

	case *ast.TemplateLiteral:
		c.compileTemplateLiteral(ex, line)

	case *ast.TaggedTemplate:
		c.compileTaggedTemplate(ex, line)

	case *ast.ArrayLiteral:
		c.compileArrayLiteral(ex, line)

	case *ast.ObjectLiteral:
		c.compileObjectLiteral(ex, line)

	case *ast.FunctionExpression:
		proto := c.compileFunction(ex)
		idx := c.chunk.addFunction(proto)
		c.emit(OpClosure, 0, idx, line)

	case *ast.ArrowFunctionExpression:
		proto := c.compileArrow(ex)
		idx := c.chunk.addFunction(proto)
		c.emit(OpClosure, 0, idx, line)

	case *ast.ClassExpression:
		c.emitClass(ex.Class, line)

	case *ast.UnaryExpression:
		c.compileUnary(ex, line)

	case *ast.UpdateExpression:
		c.compileUpdate(ex, line)

	case *ast.BinaryExpression:
		c.compileExpression(ex.Left)
		c.compileExpression(ex.Right)
		c.emit(binaryOpcode(ex.Op), 0, 0, line)

	case *ast.LogicalExpression:
		c.compileExpression(ex.Left)
		c.emitShortCircuit(logicalKind(ex.Op), ex.Right, line)

	case *ast.AssignmentExpression:
		c.compileAssignmentExpr(ex, line)

	case *ast.ConditionalExpression:
		c.compileExpression(ex.Test)
		elseJump := c.emitJump(OpJumpIfFalse, line)
		c.compileExpression(ex.Consequent)
		endJump := c.emitJump(OpJump, line)
		c.patchJump(elseJump)
		c.compileExpression(ex.Alternate)
		c.patchJump(endJump)

	case *ast.CallExpression:
		c.compileCall(ex, line)

	case *ast.NewExpression:
		c.compileNew(ex, line)

	case *ast.MemberExpression:
		c.compileMemberGet(ex, line)

	case *ast.SpreadElement:
		// Only reachable when a spread appears somewhere a plain
		// expression was expected (a parser-rejected position); array and
		// call argument lists handle *SpreadElement themselves.
		c.compileExpression(ex.Argument)

	case *ast.SequenceExpression:
		for i, item := range ex.Expressions {
			c.compileExpression(item)
			if i != len(ex.Expressions)-1 {
				c.emit(OpPop, 0, 0, line)
			}
		}

	case *ast.YieldExpression:
		if ex.Argument != nil {
			c.compileExpression(ex.Argument)
		} else {
			c.emit(OpLoadUndefined, 0, 0, line)
		}
		if ex.Delegate {
			c.emit(OpYieldStar, 0, 0, line)
		} else {
			c.emit(OpYield, 0, 0, line)
		}

	case *ast.AwaitExpression:
		c.compileExpression(ex.Argument)
		c.emit(OpAwait, 0, 0, line)
		if c.chunk.ModuleBody {
			// Top-level await: the module body must run as an async fiber.
			c.chunk.IsAsync = true
		}

	default:
		c.fail(line, "unsupported expression %T", e)
	}
}

// compileIdentifierRef handles the few identifier spellings the parser
// produces for grammar-level pseudo-references (`new.target`,
// `arguments`) in addition to ordinary variable lookups.
func (c *Compiler) compileIdentifierRef(id *ast.Identifier, line int) {
	switch id.Name {
	case "new.target":
		c.emit(OpLoadNewTarget, 0, 0, line)
		return
	case "arguments":
		if _, ok := c.resolveLocal("arguments"); !ok {
			if _, ok := c.resolveUpvalue("arguments"); !ok {
				c.emit(OpLoadArguments, 0, 0, line)
				return
			}
		}
	}
	c.emitLoadIdentifier(id.Name, line)
}

func bigIntFromDigits(digits string) value.Value {
	clean := strings.ReplaceAll(digits, "_", "")
	bi, ok := new(big.Int).SetString(clean, 0)
	if !ok {
		bi = new(big.Int)
	}
	return value.BigIntValue(bi)
}

// --- unary / update ---

func (c *Compiler) compileUnary(ex *ast.UnaryExpression, line int) {
	if ex.Op == ast.UnaryDelete {
		c.compileDelete(ex.Argument, line)
		return
	}
	if ex.Op == ast.UnaryTypeof {
		// typeof on an unresolved identifier must not throw a
		// ReferenceError. The operand is loaded the usual way; the VM's
		// LOAD_GLOBAL pushes undefined instead of throwing when the
		// instruction right after it is TYPEOF.
		c.compileExpression(ex.Argument)
		c.emit(OpTypeOf, 0, 0, line)
		return
	}
	c.compileExpression(ex.Argument)
	switch ex.Op {
	case ast.UnaryMinus:
		c.emit(OpNeg, 0, 0, line)
	case ast.UnaryPlus:
		c.emit(OpPos, 0, 0, line)
	case ast.UnaryNot:
		c.emit(OpNot, 0, 0, line)
	case ast.UnaryBitNot:
		c.emit(OpBitNot, 0, 0, line)
	case ast.UnaryVoid:
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadUndefined, 0, 0, line)
	}
}

func (c *Compiler) compileDelete(target ast.Expression, line int) {
	m, ok := target.(*ast.MemberExpression)
	if !ok {
		// delete on a non-member (a bare identifier, or any other
		// expression) always evaluates its operand for side effects and
		// yields true; deleting a variable binding is a no-op (sloppy
		// mode's own historical global-delete semantics are out of
		// scope per spec).
		c.compileExpression(target)
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadTrue, 0, 0, line)
		return
	}
	c.compileExpression(m.Object)
	if m.Computed {
		c.compileExpression(m.Property)
		c.emit(OpDeletePropVal, 0, 0, line)
	} else {
		c.emit(OpDeleteProp, 0, c.propKeyAtom(m.Property), line)
	}
}

func (c *Compiler) compileUpdate(ex *ast.UpdateExpression, line int) {
	op := OpInc
	if ex.Op == ast.UpdateDecrement {
		op = OpDec
	}
	switch t := ex.Argument.(type) {
	case *ast.Identifier:
		c.emitLoadIdentifier(t.Name, line)
		if ex.Prefix {
			c.emit(op, 0, 0, line)
			c.emitStoreIdentifier(t.Name, line)
			return
		}
		oldSlot := c.declareAnonLocal()
		c.emit(OpStoreLocal, 0, oldSlot, line)
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadLocal, 0, oldSlot, line)
		c.emit(op, 0, 0, line)
		c.emitStoreIdentifier(t.Name, line)
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadLocal, 0, oldSlot, line)

	case *ast.MemberExpression:
		objSlot := c.declareAnonLocal()
		c.compileExpression(t.Object)
		c.emit(OpStoreLocal, 0, objSlot, line)
		c.emit(OpPop, 0, 0, line)
		var keySlot uint16
		if t.Computed {
			keySlot = c.declareAnonLocal()
			c.compileExpression(t.Property)
			c.emit(OpStoreLocal, 0, keySlot, line)
			c.emit(OpPop, 0, 0, line)
		}
		c.emit(OpLoadLocal, 0, objSlot, line)
		if t.Computed {
			c.emit(OpLoadLocal, 0, keySlot, line)
			c.emit(OpGetPropVal, 0, 0, line)
		} else {
			c.emit(OpGetProp, 0, c.propKeyAtom(t.Property), line)
		}
		if ex.Prefix {
			c.emit(op, 0, 0, line)
			c.storeToMemberSlots(objSlot, keySlot, t.Computed, t.Property, line)
			return
		}
		oldSlot := c.declareAnonLocal()
		c.emit(OpStoreLocal, 0, oldSlot, line)
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadLocal, 0, oldSlot, line)
		c.emit(op, 0, 0, line)
		c.storeToMemberSlots(objSlot, keySlot, t.Computed, t.Property, line)
		c.emit(OpPop, 0, 0, line)
		c.emit(OpLoadLocal, 0, oldSlot, line)

	default:
		c.fail(line, "invalid update target")
	}
}

// storeToMemberSlots stores the value on top of the stack into the
// member addressed by the previously-captured object/key temp locals,
// leaving the stored value on the stack.
func (c *Compiler) storeToMemberSlots(objSlot, keySlot uint16, computed bool, prop ast.Expression, line int) {
	if computed {
		c.emit(OpLoadLocal, 0, objSlot, line)
		c.emit(OpLoadLocal, 0, keySlot, line)
		c.emit(OpRot3L, 0, 0, line)
		c.emit(OpSetPropVal, 0, 0, line)
		return
	}
	c.emit(OpLoadLocal, 0, objSlot, line)
	c.emit(OpSwap, 0, 0, line)
	c.emit(OpSetProp, 0, c.propKeyAtom(prop), line)
}

func binaryOpcode(op ast.BinaryOp) OpCode {
	switch op {
	case ast.BinAdd:
		return OpAdd
	case ast.BinSub:
		return OpSub
	case ast.BinMul:
		return OpMul
	case ast.BinDiv:
		return OpDiv
	case ast.BinMod:
		return OpMod
	case ast.BinPow:
		return OpPow
	case ast.BinEq:
		return OpEq
	case ast.BinNe:
		return OpNe
	case ast.BinStrictEq:
		return OpStrictEq
	case ast.BinStrictNe:
		return OpStrictNe
	case ast.BinLt:
		return OpLt
	case ast.BinLe:
		return OpLe
	case ast.BinGt:
		return OpGt
	case ast.BinGe:
		return OpGe
	case ast.BinShl:
		return OpShl
	case ast.BinShr:
		return OpShr
	case ast.BinUShr:
		return OpUShr
	case ast.BinBitAnd:
		return OpBitAnd
	case ast.BinBitOr:
		return OpBitOr
	case ast.BinBitXor:
		return OpBitXor
	case ast.BinIn:
		return OpIn
	case ast.BinInstanceof:
		return OpInstanceOf
	}
	return OpNop
}

// --- short-circuit (&&, ||, ??, and their compound-assignment forms) ---

type shortCircuitKind int

const (
	scAnd shortCircuitKind = iota
	scOr
	scNullish
)

func logicalKind(op ast.LogicalOp) shortCircuitKind {
	switch op {
	case ast.LogicalAnd:
		return scAnd
	case ast.LogicalOr:
		return scOr
	default:
		return scNullish
	}
}

// emitShortCircuit consumes nothing itself; it operates on the value
// already on top of the stack (the left operand), replacing it with
// rhs's value only when the operator's short-circuit condition isn't
// met, and leaving the original value untouched otherwise.
func (c *Compiler) emitShortCircuit(kind shortCircuitKind, rhs ast.Expression, line int) {
	switch kind {
	case scAnd:
		c.emit(OpDup, 0, 0, line)
		branch := c.emitJump(OpJumpIfFalse, line)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(rhs)
		end := c.emitJump(OpJump, line)
		c.patchJump(branch)
		c.patchJump(end)
	case scOr:
		c.emit(OpDup, 0, 0, line)
		branch := c.emitJump(OpJumpIfTrue, line)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(rhs)
		end := c.emitJump(OpJump, line)
		c.patchJump(branch)
		c.patchJump(end)
	case scNullish:
		toRhs := c.emitJump(OpJumpIfNullish, line)
		end := c.emitJump(OpJump, line)
		c.patchJump(toRhs)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(rhs)
		c.patchJump(end)
	}
}

// --- assignment ---

func (c *Compiler) compileAssignmentExpr(a *ast.AssignmentExpression, line int) {
	switch a.Left.(type) {
	case *ast.ArrayPattern, *ast.ObjectPattern:
		c.compileExpression(a.Right)
		c.emit(OpDup, 0, 0, line)
		c.assignTarget(a.Left, line)
		return
	}
	if a.Op == ast.AssignPlain {
		c.compileExpression(a.Right)
		c.compileSimpleAssignTarget(a.Left, line)
		return
	}
	c.compileCompoundAssign(a, line)
}

func (c *Compiler) compileSimpleAssignTarget(target ast.Node, line int) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.emitStoreIdentifier(t.Name, line)
	case *ast.MemberExpression:
		c.compileMemberAssignTarget(t, line)
	default:
		c.fail(line, "invalid assignment target")
	}
}

func (c *Compiler) compileCompoundAssign(a *ast.AssignmentExpression, line int) {
	switch t := a.Left.(type) {
	case *ast.Identifier:
		c.emitLoadIdentifier(t.Name, line)
		c.compileCompoundOp(a.Op, a.Right, line)
		c.emitStoreIdentifier(t.Name, line)

	case *ast.MemberExpression:
		objSlot := c.declareAnonLocal()
		c.compileExpression(t.Object)
		c.emit(OpStoreLocal, 0, objSlot, line)
		c.emit(OpPop, 0, 0, line)
		var keySlot uint16
		if t.Computed {
			keySlot = c.declareAnonLocal()
			c.compileExpression(t.Property)
			c.emit(OpStoreLocal, 0, keySlot, line)
			c.emit(OpPop, 0, 0, line)
		}
		c.emit(OpLoadLocal, 0, objSlot, line)
		if t.Computed {
			c.emit(OpLoadLocal, 0, keySlot, line)
			c.emit(OpGetPropVal, 0, 0, line)
		} else {
			c.emit(OpGetProp, 0, c.propKeyAtom(t.Property), line)
		}
		c.compileCompoundOp(a.Op, a.Right, line)
		c.storeToMemberSlots(objSlot, keySlot, t.Computed, t.Property, line)

	default:
		c.fail(line, "invalid compound assignment target")
	}
}

// compileCompoundOp consumes the current value already on the stack
// and replaces it with the result of applying op's operator against
// rhs, honoring the logical-assignment operators' short-circuit rule:
// `&&=`/`||=`/`??=` don't evaluate rhs at all when the
// current value already decides the result.
func (c *Compiler) compileCompoundOp(op ast.AssignOp, rhs ast.Expression, line int) {
	switch op {
	case ast.AssignAnd:
		c.emitShortCircuit(scAnd, rhs, line)
	case ast.AssignOr:
		c.emitShortCircuit(scOr, rhs, line)
	case ast.AssignNullish:
		c.emitShortCircuit(scNullish, rhs, line)
	default:
		c.compileExpression(rhs)
		c.emit(compoundOpcode(op), 0, 0, line)
	}
}

func compoundOpcode(op ast.AssignOp) OpCode {
	switch op {
	case ast.AssignAdd:
		return OpAdd
	case ast.AssignSub:
		return OpSub
	case ast.AssignMul:
		return OpMul
	case ast.AssignDiv:
		return OpDiv
	case ast.AssignMod:
		return OpMod
	case ast.AssignPow:
		return OpPow
	case ast.AssignShl:
		return OpShl
	case ast.AssignShr:
		return OpShr
	case ast.AssignUShr:
		return OpUShr
	case ast.AssignBitAnd:
		return OpBitAnd
	case ast.AssignBitOr:
		return OpBitOr
	case ast.AssignBitXor:
		return OpBitXor
	}
	return OpNop
}

// --- member access ---

func (c *Compiler) compileMemberGet(m *ast.MemberExpression, line int) {
	if _, ok := m.Object.(*ast.SuperExpression); ok {
		if m.Computed {
			c.compileExpression(m.Property)
			c.emit(OpSuperGetProp, 1, 0, line)
		} else {
			c.emit(OpSuperGetProp, 0, c.propKeyAtom(m.Property), line)
		}
		return
	}
	c.compileExpression(m.Object)
	if m.Computed {
		c.compileExpression(m.Property)
		if m.Optional {
			c.emit(OpGetOptionalProp, 1, 0, line)
		} else {
			c.emit(OpGetPropVal, 0, 0, line)
		}
		return
	}
	atomOp := c.propKeyAtom(m.Property)
	if m.Optional {
		c.emit(OpGetOptionalProp, 0, atomOp, line)
	} else {
		c.emit(OpGetProp, 0, atomOp, line)
	}
}

// --- calls / new ---

func (c *Compiler) compileCall(ex *ast.CallExpression, line int) {
	if _, ok := ex.Callee.(*ast.SuperExpression); ok {
		c.compileArgsSimple(ex.Args, line)
		c.emit(OpSuperCall, 0, uint16(len(ex.Args)), line)
		return
	}
	if m, ok := ex.Callee.(*ast.MemberExpression); ok {
		c.compileExpression(m.Object)
		c.emit(OpDup, 0, 0, line)
		if m.Computed {
			c.compileExpression(m.Property)
			if m.Optional {
				c.emit(OpGetOptionalProp, 1, 0, line)
			} else {
				c.emit(OpGetPropVal, 0, 0, line)
			}
		} else {
			if m.Optional {
				c.emit(OpGetOptionalProp, 0, c.propKeyAtom(m.Property), line)
			} else {
				c.emit(OpGetProp, 0, c.propKeyAtom(m.Property), line)
			}
		}
		if hasSpread(ex.Args) {
			c.compileArgsArray(ex.Args, line)
			c.emit(OpCallSpread, 1, 0, line) // A=1: receiver+method already on stack (method form)
			return
		}
		// stack is already [receiver, method] at this point
		n := c.compileArgsSimple(ex.Args, line)
		var flag byte
		if m.Optional || ex.Optional {
			flag = 1 // nullish method short-circuits to undefined
		}
		c.emit(OpCallMethod, flag, uint16(n), line)
		return
	}
	c.compileExpression(ex.Callee)
	if hasSpread(ex.Args) {
		c.compileArgsArray(ex.Args, line)
		if ex.Optional {
			c.emit(OpCallSpread, 2, 0, line) // A=2: optional plain-call spread form
		} else {
			c.emit(OpCallSpread, 0, 0, line)
		}
		return
	}
	n := c.compileArgsSimple(ex.Args, line)
	if ex.Optional {
		c.emit(OpOptionalCall, 0, uint16(n), line)
	} else {
		c.emit(OpCall, 0, uint16(n), line)
	}
}

func (c *Compiler) compileNew(ex *ast.NewExpression, line int) {
	c.compileExpression(ex.Callee)
	if hasSpread(ex.Args) {
		c.compileArgsArray(ex.Args, line)
		c.emit(OpNewSpread, 0, 0, line)
		return
	}
	n := c.compileArgsSimple(ex.Args, line)
	c.emit(OpNew, 0, uint16(n), line)
}

func hasSpread(args []ast.Expression) bool {
	for _, a := range args {
		if _, ok := a.(*ast.SpreadElement); ok {
			return true
		}
	}
	return false
}

// compileArgsSimple compiles an argument list known to contain no
// spreads, pushing each value in order, and returns the count.
func (c *Compiler) compileArgsSimple(args []ast.Expression, line int) int {
	for _, a := range args {
		c.compileExpression(a)
	}
	return len(args)
}

// compileArgsArray builds a single array value holding every argument,
// expanding *SpreadElement entries in place, for the *Spread call/new
// opcodes.
func (c *Compiler) compileArgsArray(args []ast.Expression, line int) {
	c.emit(OpNewArray, 0, 0, line)
	idx := 0
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			c.emit(OpDup, 0, 0, line)
			c.compileExpression(sp.Argument)
			c.emit(OpPushSpread, 0, 0, line)
			continue
		}
		c.emit(OpDup, 0, 0, line)
		c.compileExpression(a)
		c.emit(OpArraySet, 0, uint16(idx), line)
		idx++
	}
}

// --- array / object literals ---

func (c *Compiler) compileArrayLiteral(ex *ast.ArrayLiteral, line int) {
	c.emit(OpNewArray, 0, 0, line)
	idx := 0
	for _, el := range ex.Elements {
		if el == nil {
			idx++
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			c.emit(OpDup, 0, 0, line)
			c.compileExpression(sp.Argument)
			c.emit(OpPushSpread, 0, 0, line)
			continue
		}
		c.emit(OpDup, 0, 0, line)
		c.compileExpression(el)
		c.emit(OpArraySet, 0, uint16(idx), line)
		idx++
	}
}

func (c *Compiler) compileObjectLiteral(ex *ast.ObjectLiteral, line int) {
	c.emit(OpNewObject, 0, 0, line)
	for _, prop := range ex.Properties {
		switch prop.Kind {
		case ast.PropSpread:
			c.compileExpression(prop.Key)
			c.emit(OpCopyDataProperties, 0, 0, line)
		case ast.PropGet, ast.PropSet:
			c.emit(OpDup, 0, 0, line)
			c.emitPropertyKeyLoad(prop.Key, prop.Computed, line)
			c.compileExpression(prop.Value)
			if prop.Kind == ast.PropGet {
				c.emit(OpDefineGetter, 0, 0, line)
			} else {
				c.emit(OpDefineSetter, 0, 0, line)
			}
		default: // PropInit, PropMethod
			c.emit(OpDup, 0, 0, line)
			if !prop.Computed {
				c.compileExpression(prop.Value)
				c.emit(OpSetProp, 0, c.literalKeyAtom(prop.Key), line)
				c.emit(OpPop, 0, 0, line)
				continue
			}
			c.compileExpression(prop.Key)
			c.compileExpression(prop.Value)
			c.emit(OpSetPropVal, 0, 0, line)
			c.emit(OpPop, 0, 0, line)
		}
	}
}

// literalKeyAtom resolves any non-computed object-literal or class
// property key (Identifier, StringLiteral, or NumberLiteral) to its
// atom handle, unlike patterns.go's propKeyAtom which only needs to
// handle member-expression property names.
func (c *Compiler) literalKeyAtom(key ast.Expression) uint16 {
	switch k := key.(type) {
	case *ast.Identifier:
		return uint16(c.intern(k.Name))
	case *ast.PrivateIdentifier:
		return uint16(c.intern(k.Name))
	case *ast.StringLiteral:
		return uint16(c.intern(k.Value))
	case *ast.NumberLiteral:
		return uint16(c.intern(value.NumberToString(k.Value)))
	default:
		return 0
	}
}

// --- templates ---

func (c *Compiler) compileTemplateLiteral(ex *ast.TemplateLiteral, line int) {
	for i, q := range ex.Quasis {
		c.emit(OpLoadConst, 0, c.constant(value.String(q)), line)
		if i < len(ex.Exprs) {
			c.compileExpression(ex.Exprs[i])
		}
	}
	c.emit(OpConcat, 0, uint16(len(ex.Quasis)+len(ex.Exprs)), line)
}

func (c *Compiler) compileTaggedTemplate(ex *ast.TaggedTemplate, line int) {
	c.compileExpression(ex.Tag)
	c.emit(OpNewArray, 0, 0, line) // strings array (.raw/.cooked assembled by the VM helper)
	for i, q := range ex.Template.Quasis {
		c.emit(OpDup, 0, 0, line)
		c.emit(OpLoadConst, 0, c.constant(value.String(q)), line)
		c.emit(OpArraySet, 0, uint16(i), line)
	}
	for _, sub := range ex.Template.Exprs {
		c.compileExpression(sub)
	}
	c.emit(OpTaggedTemplate, 0, uint16(len(ex.Template.Exprs)), line)
}
