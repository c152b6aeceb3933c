package vm

import "github.com/go-ecmascript/ecmascript/internal/value"

// NativeFunc is the signature every host-implemented (non-bytecode)
// callable uses, whether installed by the realm's intrinsics or by an
// embedder.
type NativeFunc func(vm *VM, this value.Value, args []value.Value, newTarget value.Value) (value.Value, error)

// nativeFunction builds a callable Function object backed by fn,
// matching value.NewFunction's contract that Callable.Payload is
// opaque to the value package and type-asserted by its caller (here,
// the VM's call dispatch).
func (vm *VM) nativeFunction(name string, length int, fn NativeFunc) *value.Object {
	return value.NewFunction(vm.Realm.FunctionPrototype, name, length, value.FunctionNative, fn)
}

// defineMethod installs a non-enumerable native method on obj, the
// shape every built-in prototype method uses (writable+configurable,
// non-enumerable).
func (vm *VM) defineMethod(obj *value.Object, name string, length int, fn NativeFunc) {
	key := value.StringKey(vm.Atoms.Intern(name))
	obj.DefineOwnDataProperty(key, value.Object_(vm.nativeFunction(name, length, fn)), true, false, true)
}

// defineMethodSymbol installs a non-enumerable native method keyed by a
// well-known symbol (Symbol.iterator, Symbol.asyncIterator), the same
// shape defineMethod uses for string-keyed built-ins.
func (vm *VM) defineMethodSymbol(obj *value.Object, sym *value.Symbol, name string, length int, fn NativeFunc) {
	key := value.SymbolKey(sym)
	obj.DefineOwnDataProperty(key, value.Object_(vm.nativeFunction(name, length, fn)), true, false, true)
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Undefined
	}
	return args[i]
}
