package bytecode

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// bindPattern consumes the value on top of the stack, binding it into
// pat's target(s) as fresh declarations (let/const/var/param/catch
// binding context — not an assignment to an existing reference; see
// assignToPattern for that). Net stack effect is zero: every leaf of
// the pattern ends with an explicit POP after its store.
func (c *Compiler) bindPattern(pat ast.Pattern, isConst bool, line int) {
	switch p := pat.(type) {
	case *ast.Identifier:
		slot := c.declareLocal(p.Name, isConst, false)
		c.emit(OpStoreLocal, 0, slot, line)
		c.emit(OpPop, 0, 0, line)

	case *ast.AssignmentPattern:
		c.emitDefaultIfUndefined(p.Default, line)
		c.bindPattern(p.Left, isConst, line)

	case *ast.ArrayPattern:
		c.bindArrayPattern(p, isConst, line)

	case *ast.ObjectPattern:
		c.bindObjectPattern(p, isConst, line)

	case *ast.RestElement:
		// Only reachable when a rest pattern appears somewhere bindPattern
		// is called directly on it (parameter lists handle rest specially).
		c.bindPattern(p.Argument, isConst, line)

	default:
		c.fail(line, "unsupported binding pattern")
		c.emit(OpPop, 0, 0, line)
	}
}

// emitDefaultIfUndefined takes the value on top of the stack and
// replaces it with the evaluation of def if (and only if) the value is
// strictly undefined; default expressions fire only on undefined.
func (c *Compiler) emitDefaultIfUndefined(def ast.Expression, line int) {
	c.emit(OpDup, 0, 0, line)
	c.emit(OpLoadUndefined, 0, 0, line)
	c.emit(OpStrictEq, 0, 0, line)
	skip := c.emitJump(OpJumpIfFalse, line)
	c.emit(OpPop, 0, 0, line)
	c.compileExpression(def)
	end := c.emitJump(OpJump, line)
	c.patchJump(skip)
	c.patchJump(end)
}

func (c *Compiler) bindArrayPattern(p *ast.ArrayPattern, isConst bool, line int) {
	iterSlot := c.declareAnonLocal()
	c.emit(OpGetIterator, 0, 0, line)
	c.emit(OpStoreLocal, 0, iterSlot, line)
	c.emit(OpPop, 0, 0, line)

	for _, el := range p.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			c.emit(OpLoadLocal, 0, iterSlot, line)
			c.emit(OpIteratorRestArray, 0, 0, line)
			c.bindPattern(rest.Argument, isConst, line)
			return
		}
		c.emit(OpLoadLocal, 0, iterSlot, line)
		c.emit(OpIteratorNext, 0, 0, line)
		c.emit(OpPop, 0, 0, line) // drop `done`
		if el == nil {
			c.emit(OpPop, 0, 0, line) // elision: drop value too
			continue
		}
		c.bindPattern(el, isConst, line)
	}
}

func (c *Compiler) bindObjectPattern(p *ast.ObjectPattern, isConst bool, line int) {
	for _, prop := range p.Properties {
		c.emit(OpDup, 0, 0, line)
		c.emitPropertyKeyLoad(prop.Key, prop.Computed, line)
		c.emit(OpGetPropVal, 0, 0, line)
		c.bindPattern(prop.Value, isConst, line)
	}
	if p.Rest != nil {
		c.emit(OpNewObject, 0, 0, line)
		c.emit(OpSwap, 0, 0, line)
		c.emit(OpCopyDataProperties, 0, 0, line)
		c.bindPattern(p.Rest, isConst, line)
		return
	}
	c.emit(OpPop, 0, 0, line) // drop the extra source reference
}

// emitPropertyKeyLoad pushes a property key value (string or the
// result of a computed expression) for use with *PropVal opcodes.
func (c *Compiler) emitPropertyKeyLoad(key ast.Expression, computed bool, line int) {
	if computed {
		c.compileExpression(key)
		return
	}
	switch k := key.(type) {
	case *ast.Identifier:
		c.emit(OpLoadConst, 0, c.constant(value.String(k.Name)), line)
	case *ast.StringLiteral:
		c.emit(OpLoadConst, 0, c.constant(value.String(k.Value)), line)
	case *ast.NumberLiteral:
		c.emit(OpLoadConst, 0, c.constant(value.String(value.NumberToString(k.Value))), line)
	default:
		c.compileExpression(key)
	}
}

func (c *Compiler) declareAnonLocal() uint16 {
	return c.declareLocal("", false, false)
}

// assignTarget consumes the value on top of the stack, storing it into
// an ALREADY BOUND target: an identifier, a member expression, or a
// destructuring pattern built from them (`[a, obj.b] = x`). Unlike
// bindPattern this never declares a new binding.
func (c *Compiler) assignTarget(target ast.Node, line int) {
	switch t := target.(type) {
	case *ast.Identifier:
		c.emitStoreIdentifier(t.Name, line)
		c.emit(OpPop, 0, 0, line)

	case *ast.MemberExpression:
		c.compileMemberAssignTarget(t, line)

	case *ast.AssignmentPattern:
		c.emitDefaultIfUndefined(t.Default, line)
		c.assignTarget(t.Left, line)

	case *ast.ArrayPattern:
		c.assignArrayPattern(t, line)

	case *ast.ObjectPattern:
		c.assignObjectPattern(t, line)

	case *ast.RestElement:
		c.assignTarget(t.Argument, line)

	default:
		c.fail(line, "invalid assignment target")
		c.emit(OpPop, 0, 0, line)
	}
}

// compileMemberAssignTarget stores the value already on top of the
// stack into obj.prop / obj[key], consuming it and leaving the stored
// value as the expression's result (so `a.b = c.d = 1` works).
func (c *Compiler) compileMemberAssignTarget(m *ast.MemberExpression, line int) {
	c.compileExpression(m.Object) // [value, obj]
	if m.Computed {
		c.compileExpression(m.Property) // [value, obj, key]
		c.emit(OpRot3L, 0, 0, line)      // [obj, key, value]
		c.emit(OpSetPropVal, 0, 0, line) // pops value,key,obj; pushes value
		return
	}
	atomOp := c.propKeyAtom(m.Property)
	c.emit(OpSwap, 0, 0, line)          // [obj, value]
	c.emit(OpSetProp, 0, atomOp, line) // pops value,obj; pushes value
}

// propKeyAtom resolves a non-computed member property name (an
// Identifier or PrivateIdentifier) to its atom handle.
func (c *Compiler) propKeyAtom(prop ast.Expression) uint16 {
	switch p := prop.(type) {
	case *ast.Identifier:
		return uint16(c.intern(p.Name))
	case *ast.PrivateIdentifier:
		return uint16(c.intern(p.Name))
	default:
		return 0
	}
}

func (c *Compiler) assignArrayPattern(p *ast.ArrayPattern, line int) {
	iterSlot := c.declareAnonLocal()
	c.emit(OpGetIterator, 0, 0, line)
	c.emit(OpStoreLocal, 0, iterSlot, line)
	c.emit(OpPop, 0, 0, line)

	for _, el := range p.Elements {
		if rest, ok := el.(*ast.RestElement); ok {
			c.emit(OpLoadLocal, 0, iterSlot, line)
			c.emit(OpIteratorRestArray, 0, 0, line)
			c.assignTarget(rest.Argument, line)
			return
		}
		c.emit(OpLoadLocal, 0, iterSlot, line)
		c.emit(OpIteratorNext, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
		if el == nil {
			c.emit(OpPop, 0, 0, line)
			continue
		}
		c.assignTarget(el, line)
	}
}

func (c *Compiler) assignObjectPattern(p *ast.ObjectPattern, line int) {
	for _, prop := range p.Properties {
		c.emit(OpDup, 0, 0, line)
		c.emitPropertyKeyLoad(prop.Key, prop.Computed, line)
		c.emit(OpGetPropVal, 0, 0, line)
		c.assignTarget(prop.Value, line)
	}
	if p.Rest != nil {
		c.emit(OpNewObject, 0, 0, line)
		c.emit(OpSwap, 0, 0, line)
		c.emit(OpCopyDataProperties, 0, 0, line)
		c.assignTarget(p.Rest, line)
		return
	}
	c.emit(OpPop, 0, 0, line)
}
