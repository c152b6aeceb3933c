package vm

import (
	"fmt"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// jsError wraps a thrown ECMAScript value so it can travel through Go
// error returns up to the point a try/catch handler (or the top-level
// caller) intercepts it.
type jsError struct {
	val value.Value
}

func (e *jsError) Error() string {
	if e.val.IsObject() {
		if msg, _, ok := e.val.Obj().GetProperty(value.StringKey(atom.Message)); ok {
			return msg.Value.Str()
		}
	}
	if e.val.IsString() {
		return e.val.Str()
	}
	return "uncaught exception"
}

// newError builds a `new <Kind>Error(message)`-shaped object using the
// realm's error prototypes, for errors the VM itself raises (TypeError
// on a bad operand, ReferenceError on TDZ, etc.)
func (vm *VM) newError(kind, message string) error {
	proto := vm.Realm.ErrorPrototypes[kind]
	if proto == nil {
		proto = vm.Realm.ErrorPrototype
	}
	o := value.NewObject(proto)
	o.Class = "Error"
	o.DefineOwnDataProperty(value.StringKey(atom.Message), value.String(message), true, false, true)
	o.DefineOwnDataProperty(value.StringKey(atom.Name), value.String(kind), true, false, true)
	return &jsError{val: value.Object_(o)}
}

func (vm *VM) typeError(format string, args ...any) error {
	return vm.newError("TypeError", sprintf(format, args...))
}

func (vm *VM) rangeError(format string, args ...any) error {
	return vm.newError("RangeError", sprintf(format, args...))
}

func (vm *VM) referenceError(format string, args ...any) error {
	return vm.newError("ReferenceError", sprintf(format, args...))
}

// ThrownValue unwraps err into the ECMAScript value a `throw` (or an
// internal TypeError/RangeError/ReferenceError) carried, for an
// embedder that needs the actual thrown value rather than a Go error
// string. The second result is
// false for a host-level failure (a syntax or compiler error, or a Go
// runtime error unrelated to a JS throw).
func ThrownValue(err error) (value.Value, bool) {
	je, ok := err.(*jsError)
	if !ok {
		return value.Undefined, false
	}
	return je.val, true
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
