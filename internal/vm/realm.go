package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/promise"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// Realm bundles the intrinsic objects a VM needs to run any script:
// the global object, the well-known prototypes of Object/Array/
// Function/Error/Promise, and the microtask queue those intrinsics
// schedule work on. It generalizes a flat global symbol table to
// ECMAScript's prototype-chain object
// model: every plain object still ultimately roots at ObjectPrototype.
type Realm struct {
	GlobalObject *value.Object

	ObjectPrototype   *value.Object
	FunctionPrototype *value.Object
	ArrayPrototype    *value.Object
	StringPrototype   *value.Object
	NumberPrototype   *value.Object
	BooleanPrototype  *value.Object
	SymbolPrototype   *value.Object
	BigIntPrototype   *value.Object
	PromisePrototype  *value.Object
	IteratorPrototype *value.Object
	GeneratorPrototype *value.Object

	ErrorPrototype  *value.Object
	ErrorPrototypes map[string]*value.Object // "TypeError" -> its .prototype, etc.

	PromiseConstructor *value.Object

	Microtasks *promise.Queue

	rejectionCallback func(reason value.Value, promiseObj *value.Object, handled bool)
}

// NewRealm builds a fresh realm for vm: the global object plus every
// intrinsic prototype the VM's opcodes dereference directly (NEW_OBJECT,
// NEW_ARRAY, thrown errors, Promise/async-await), and installs the
// minimal global bindings (`globalThis`, `undefined`, the error
// constructors, `Promise`, `Symbol`) a hosted script can observe.
func NewRealm(vm *VM) *Realm {
	r := &Realm{
		ErrorPrototypes: make(map[string]*value.Object),
		Microtasks:      promise.NewQueue(),
	}

	r.ObjectPrototype = value.NewObject(nil)
	r.FunctionPrototype = value.NewObject(r.ObjectPrototype)
	r.FunctionPrototype.Class = "Function"
	r.ArrayPrototype = value.NewObject(r.ObjectPrototype)
	r.ArrayPrototype.Class = "Array"
	r.StringPrototype = value.NewObject(r.ObjectPrototype)
	r.NumberPrototype = value.NewObject(r.ObjectPrototype)
	r.BooleanPrototype = value.NewObject(r.ObjectPrototype)
	r.SymbolPrototype = value.NewObject(r.ObjectPrototype)
	r.BigIntPrototype = value.NewObject(r.ObjectPrototype)
	r.IteratorPrototype = value.NewObject(r.ObjectPrototype)
	r.GeneratorPrototype = value.NewObject(r.IteratorPrototype)
	r.PromisePrototype = value.NewObject(r.ObjectPrototype)

	r.ErrorPrototype = value.NewObject(r.ObjectPrototype)
	r.ErrorPrototype.DefineOwnDataProperty(value.StringKey(atom.Name), value.String("Error"), true, false, true)
	r.ErrorPrototype.DefineOwnDataProperty(value.StringKey(atom.Message), value.String(""), true, false, true)
	for _, kind := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		proto := value.NewObject(r.ErrorPrototype)
		proto.DefineOwnDataProperty(value.StringKey(atom.Name), value.String(kind), true, false, true)
		r.ErrorPrototypes[kind] = proto
	}

	r.GlobalObject = value.NewObject(r.ObjectPrototype)
	r.GlobalObject.Class = "global"

	vm.Realm = r
	vm.installGlobals(r)
	vm.wirePromiseQueue(r)
	return r
}
