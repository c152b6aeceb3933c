package vm

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// makeClosure instantiates a runtime closure from proto, capturing the
// upvalue cells proto.Chunk.UpvalueDefs describes: a capture straight
// from the enclosing frame's own locals, or one threaded through from
// a cell the enclosing frame already captured (every local is boxed,
// so capture is always a
// pointer copy).
func (vm *VM) makeClosure(f *Frame, proto *bytecode.FunctionProto) *bytecode.Closure {
	cl := &bytecode.Closure{Proto: proto}
	if len(proto.Chunk.UpvalueDefs) > 0 {
		cl.Upvalues = make([]*bytecode.Cell, len(proto.Chunk.UpvalueDefs))
		for i, def := range proto.Chunk.UpvalueDefs {
			if def.IsLocal {
				cl.Upvalues[i] = f.locals[def.Index]
			} else {
				cl.Upvalues[i] = f.closure.Upvalues[def.Index]
			}
		}
	}
	if proto.Chunk.IsArrow {
		this := f.this
		cl.This = &this
	}
	cl.HomeObject = f.homeObj
	return cl
}

func functionKind(chunk *bytecode.Chunk) value.FunctionKind {
	switch {
	case chunk.IsArrow:
		return value.FunctionArrow
	case chunk.IsGenerator && chunk.IsAsync:
		return value.FunctionAsyncGenerator
	case chunk.IsGenerator:
		return value.FunctionGenerator
	case chunk.IsAsync:
		return value.FunctionAsync
	default:
		return value.FunctionNormal
	}
}

// closureObject wraps a runtime closure in the Function-class Object
// the rest of the VM (property access, `typeof`, `instanceof`) deals
// in, giving ordinary (non-arrow, non-generator, non-async) closures a
// fresh `.prototype` object so `new` has somewhere to root instances.
func (vm *VM) closureObject(cl *bytecode.Closure) *value.Object {
	kind := functionKind(cl.Proto.Chunk)
	fn := value.NewFunction(vm.Realm.FunctionPrototype, cl.Proto.Name, cl.Proto.ParamLen, kind, cl)
	fn.Callable.HomeObject = cl.HomeObject
	if kind == value.FunctionNormal {
		proto := value.NewObject(vm.Realm.ObjectPrototype)
		proto.DefineOwnDataProperty(value.StringKey(atom.Constructor), value.Object_(fn), true, false, true)
		fn.DefineOwnDataProperty(value.StringKey(atom.Prototype), value.Object_(proto), true, false, false)
	}
	fn.DefineOwnDataProperty(value.StringKey(atom.Name), value.String(cl.Proto.Name), false, false, true)
	fn.DefineOwnDataProperty(value.StringKey(atom.Length), value.Int(cl.Proto.ParamLen), false, false, true)
	return fn
}

// newBytecodeFrame builds the activation record for invoking cl with
// this, newTarget, and a raw argument vector, applying the calling
// convention bindParams relies on: each declared parameter occupies
// one local slot in order, a trailing rest parameter (if any) collects
// every argument from its own slot onward into an array, and every
// let/const/class slot marked TDZInit starts at the TDZ sentinel.
func (vm *VM) newBytecodeFrame(cl *bytecode.Closure, this, newTarget value.Value, args []value.Value) *Frame {
	chunk := cl.Proto.Chunk
	locals := make([]*bytecode.Cell, chunk.LocalCount)
	for i := range locals {
		locals[i] = &bytecode.Cell{}
	}
	restSlot := -1
	if chunk.HasRest {
		restSlot = cl.Proto.ParamLen
	}
	for i := 0; i < chunk.ParamCount && i < len(locals); i++ {
		if i == restSlot {
			var rest []value.Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			locals[i].Value = value.Object_(value.NewArray(vm.Realm.ArrayPrototype, rest))
			continue
		}
		locals[i].Value = arg(args, i)
	}
	for i, tdz := range chunk.TDZInit {
		if tdz && i < len(locals) {
			locals[i].Value = vm.tdzSentinel
		}
	}
	f := &Frame{closure: cl, chunk: chunk, locals: locals, this: this, newTarget: newTarget, homeObj: cl.HomeObject}
	if cl.This != nil {
		f.this = *cl.This
	}
	if !chunk.IsArrow {
		f.argsObj = value.Object_(value.NewArray(vm.Realm.ArrayPrototype, args))
	}
	return f
}

// call runs a bytecode closure synchronously to completion (or to a
// thrown exception). Generator/async dispatch happens one layer up in
// callValue; by the time execution reaches here the body runs exactly
// like any other function-call frame, including a generator/async
// body running on its own fiber (coroutine.go) between suspension
// points.
func (vm *VM) call(cl *bytecode.Closure, this value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	if len(vm.frames) >= maxCallDepth {
		return value.Undefined, vm.newError("RangeError", "Maximum call stack size exceeded")
	}
	f := vm.newBytecodeFrame(cl, this, newTarget, args)
	return vm.run(f)
}

// callValue implements the abstract Call operation: native functions
// run inline, bound functions re-target through their stored this/args,
// generator and async bytecode functions get their own coroutine
// (coroutine.go) instead of running straight through, and everything
// else runs synchronously via call.
func (vm *VM) callValue(callee, this value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	if !callee.IsObject() || callee.Obj().Callable == nil {
		return value.Undefined, vm.typeError("%s is not a function", vm.displayOf(callee))
	}
	fn := callee.Obj()
	fd := fn.Callable
	switch fd.Kind {
	case value.FunctionNative:
		native, _ := fd.Payload.(NativeFunc)
		return native(vm, this, args, newTarget)
	case value.FunctionBound:
		boundArgs := append(append([]value.Value(nil), fd.BoundArgs...), args...)
		return vm.callValue(value.Object_(fd.BoundTarget), fd.BoundThis, boundArgs, newTarget)
	}
	cl, _ := fd.Payload.(*bytecode.Closure)
	if cl == nil {
		return value.Undefined, vm.typeError("%s is not a function", vm.displayOf(callee))
	}
	switch fd.Kind {
	case value.FunctionGenerator, value.FunctionAsyncGenerator:
		return value.Object_(vm.newGenerator(fn, cl, this, args)), nil
	case value.FunctionAsync:
		return vm.runAsync(fn, cl, this, args), nil
	default:
		return vm.call(cl, this, args, newTarget)
	}
}

// construct implements the abstract Construct operation for `new`:
// allocate a fresh ordinary object rooted at the constructor's
// `.prototype` (or Object.prototype, if it isn't an object), run the
// constructor body with that object as `this`, and return the
// constructor's result if it returned an object, else the allocated
// `this`. A derived class constructor instead leaves `this` in the TDZ
// until its body runs `super(...)` (superCall, in class.go, fills it
// in); returning without ever calling super is a ReferenceError.
func (vm *VM) construct(ctor value.Value, args []value.Value, newTarget value.Value) (value.Value, error) {
	if !ctor.IsObject() || ctor.Obj().Callable == nil {
		return value.Undefined, vm.typeError("%s is not a constructor", vm.displayOf(ctor))
	}
	fn := ctor.Obj()
	fd := fn.Callable
	switch fd.Kind {
	case value.FunctionArrow, value.FunctionGetter, value.FunctionSetter, value.FunctionGenerator,
		value.FunctionAsync, value.FunctionAsyncGenerator, value.FunctionMethod:
		return value.Undefined, vm.typeError("%s is not a constructor", vm.displayOf(ctor))
	case value.FunctionNative:
		native, _ := fd.Payload.(NativeFunc)
		return native(vm, value.Undefined, args, newTarget)
	case value.FunctionBound:
		boundArgs := append(append([]value.Value(nil), fd.BoundArgs...), args...)
		return vm.construct(value.Object_(fd.BoundTarget), boundArgs, newTarget)
	}
	if native, ok := fd.Payload.(NativeFunc); ok {
		// A native class constructor (Error, Promise) builds its own result.
		return native(vm, value.Undefined, args, newTarget)
	}
	cl, _ := fd.Payload.(*bytecode.Closure)
	if cl == nil {
		return value.Undefined, vm.typeError("%s is not a constructor", vm.displayOf(ctor))
	}
	// The instance prototype comes from newTarget, so `new Derived()`
	// roots the instance at Derived.prototype even while the base
	// constructor is the one allocating it.
	protoSource := fn
	if newTarget.IsObject() && newTarget.Obj().Callable != nil {
		protoSource = newTarget.Obj()
	}
	instProto := vm.Realm.ObjectPrototype
	if p, _, ok := protoSource.GetProperty(value.StringKey(atom.Prototype)); ok && p.Value.IsObject() {
		instProto = p.Value.Obj()
	}
	derived := cl.Proto.Derived
	var this value.Value
	if derived {
		this = vm.tdzSentinel
	} else {
		this = value.Object_(value.NewObject(instProto))
		if err := vm.applyInstanceFields(cl.InstanceFields, this); err != nil {
			return value.Undefined, err
		}
	}
	if len(vm.frames) >= maxCallDepth {
		return value.Undefined, vm.newError("RangeError", "Maximum call stack size exceeded")
	}
	f := vm.newBytecodeFrame(cl, this, newTarget, args)
	res, err := vm.run(f)
	if err != nil {
		return value.Undefined, err
	}
	if res.IsObject() {
		return res, nil
	}
	if derived {
		// super(...) replaced the frame's `this`; a derived constructor
		// that returned without ever calling super is an error.
		if vm.isTDZ(f.this) {
			return value.Undefined, vm.referenceError("must call super constructor before returning from derived constructor")
		}
		return f.this, nil
	}
	return this, nil
}

func (vm *VM) getGlobal(a atom.Atom, line int) (value.Value, error) {
	if slot, _, ok := vm.Global.GetProperty(value.StringKey(a)); ok {
		return slot.Value, nil
	}
	name, _ := vm.Atoms.GetString(a)
	return value.Undefined, vm.referenceError("%s is not defined", name)
}

func (vm *VM) setGlobal(a atom.Atom, v value.Value) {
	key := value.StringKey(a)
	if slot, owner, ok := vm.Global.GetProperty(key); ok && owner == vm.Global && slot.Accessor {
		if slot.Set != nil {
			vm.callValue(value.Object_(slot.Set), value.Object_(vm.Global), []value.Value{v}, value.Undefined)
		}
		return
	}
	vm.Global.DefineOwnDataProperty(key, v, true, true, true)
}

func (vm *VM) displayOf(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return v.Str()
	case v.IsObject():
		if v.Obj().Callable != nil && v.Obj().Callable.Name != "" {
			return v.Obj().Callable.Name
		}
		return "value"
	default:
		s, _ := vm.toString(v)
		return s
	}
}

// --- coercions ---

func (vm *VM) toNumber(v value.Value) float64 {
	switch v.Kind() {
	case value.KindNumber:
		return v.Float()
	case value.KindBoolean:
		if v.Bool() {
			return 1
		}
		return 0
	case value.KindNull:
		return 0
	case value.KindUndefined:
		return math.NaN()
	case value.KindString:
		return stringToNumber(v.Str())
	case value.KindBigInt:
		f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
		return f
	default:
		prim, err := vm.toPrimitive(v, "number")
		if err != nil || prim.IsObject() {
			return math.NaN()
		}
		return vm.toNumber(prim)
	}
}

// ToString exposes the abstract ToString(v) coercion to embedders
// (pkg/ecmascript's Value.String and the CLI's `eval` result dump),
// so a host can stringify a returned value for display.
func (vm *VM) ToString(v value.Value) (string, error) { return vm.toString(v) }

func (vm *VM) toString(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindString:
		return v.Str(), nil
	case value.KindNumber:
		return value.NumberToString(v.Float()), nil
	case value.KindBoolean:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case value.KindNull:
		return "null", nil
	case value.KindUndefined:
		return "undefined", nil
	case value.KindBigInt:
		return v.BigInt().String(), nil
	case value.KindSymbol:
		return "", vm.typeError("Cannot convert a Symbol value to a string")
	default:
		prim, err := vm.toPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		if prim.IsObject() {
			return "", vm.typeError("Cannot convert object to primitive value")
		}
		return vm.toString(prim)
	}
}

// toPrimitive implements OrdinaryToPrimitive: try valueOf then
// toString (or toString then valueOf when hint is "string"), returning
// the first result that isn't itself an object.
func (vm *VM) toPrimitive(v value.Value, hint string) (value.Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	methods := []atom.Atom{atom.ValueOf, atom.ToString}
	if hint == "string" {
		methods = []atom.Atom{atom.ToString, atom.ValueOf}
	}
	for _, m := range methods {
		slot, _, ok := v.Obj().GetProperty(value.StringKey(m))
		if !ok || !slot.Value.IsObject() || slot.Value.Obj().Callable == nil {
			continue
		}
		res, err := vm.callValue(slot.Value, v, nil, value.Undefined)
		if err != nil {
			return value.Undefined, err
		}
		if !res.IsObject() {
			return res, nil
		}
	}
	return value.Undefined, vm.typeError("Cannot convert object to primitive value")
}

func (vm *VM) toObject(v value.Value) (*value.Object, error) {
	switch v.Kind() {
	case value.KindObject:
		return v.Obj(), nil
	case value.KindString:
		o := value.NewObject(vm.Realm.StringPrototype)
		o.Class = "String"
		o.Internal = v.Str()
		return o, nil
	case value.KindNumber:
		o := value.NewObject(vm.Realm.NumberPrototype)
		o.Class = "Number"
		o.Internal = v.Float()
		return o, nil
	case value.KindBoolean:
		o := value.NewObject(vm.Realm.BooleanPrototype)
		o.Class = "Boolean"
		o.Internal = v.Bool()
		return o, nil
	case value.KindSymbol:
		o := value.NewObject(vm.Realm.SymbolPrototype)
		o.Class = "Symbol"
		o.Internal = v.Sym()
		return o, nil
	case value.KindBigInt:
		o := value.NewObject(vm.Realm.BigIntPrototype)
		o.Class = "BigInt"
		o.Internal = v.BigInt()
		return o, nil
	default:
		return nil, vm.typeError("Cannot convert undefined or null to object")
	}
}

func stringToNumber(s string) float64 {
	trimmed := strings.TrimFunc(s, isJSSpace)
	if trimmed == "" {
		return 0
	}
	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isJSSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0xFEFF:
		return true
	}
	return false
}
