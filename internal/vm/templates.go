package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// taggedTemplateCall implements a tagged template expression:
// compileTaggedTemplate leaves [tagFn, stringsArray, sub0, ..., subN-1]
// on the stack, where stringsArray already holds the cooked quasis.
// This compiler has no separate raw-string pool, so `.raw` is wired to
// the same cooked array rather than a second copy — for a template
// with no escape sequences the two are the same; with escapes, `.raw`
// holds the cooked text.
func (vm *VM) taggedTemplateCall(f *Frame, inst bytecode.Instruction) (value.Value, error) {
	n := int(inst.B)
	subs := vm.popN(n)
	strings := vm.pop()
	tag := vm.pop()
	if strings.IsObject() {
		strings.Obj().DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("raw")), strings, false, false, false)
	}
	args := append([]value.Value{strings}, subs...)
	return vm.callValue(tag, value.Undefined, args, value.Undefined)
}
