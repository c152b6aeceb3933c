package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// makeMethodClosure builds a closure the same way makeClosure does
// (capturing upvalues from the frame where the class expression is
// being evaluated) but pins HomeObject to home instead of inheriting
// the enclosing frame's, since a class's methods resolve `super`
// against the class's own prototype/constructor, not whatever object
// (if any) the surrounding code is a method of.
func (vm *VM) makeMethodClosure(f *Frame, proto *bytecode.FunctionProto, home *value.Object) *bytecode.Closure {
	cl := vm.makeClosure(f, proto)
	cl.HomeObject = home
	return cl
}

func (vm *VM) runKeyThunk(f *Frame, proto *bytecode.FunctionProto, home *value.Object) (value.PropertyKey, error) {
	cl := vm.makeMethodClosure(f, proto, home)
	v, err := vm.call(cl, value.Undefined, nil, value.Undefined)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return vm.toPropertyKey(v)
}

func (vm *VM) resolveKey(f *Frame, mi fieldOrMethodKey, home *value.Object) (value.PropertyKey, error) {
	if mi.computed() {
		return vm.runKeyThunk(f, mi.keyProto(), home)
	}
	return mi.key(), nil
}

// fieldOrMethodKey abstracts over FieldInit and MethodInit's identical
// key-shape so resolveKey can serve both.
type fieldOrMethodKey interface {
	computed() bool
	keyProto() *bytecode.FunctionProto
	key() value.PropertyKey
}

type fieldKeyAdapter bytecode.FieldInit

func (f fieldKeyAdapter) computed() bool                   { return f.Computed }
func (f fieldKeyAdapter) keyProto() *bytecode.FunctionProto { return f.KeyProto }
func (f fieldKeyAdapter) key() value.PropertyKey            { return f.Key }

type methodKeyAdapter bytecode.MethodInit

func (m methodKeyAdapter) computed() bool                   { return m.Computed }
func (m methodKeyAdapter) keyProto() *bytecode.FunctionProto { return m.KeyProto }
func (m methodKeyAdapter) key() value.PropertyKey            { return m.Key }

// applyMethods installs proto's instance or static methods onto target
// (the class's prototype object, or the constructor function object
// for statics), resolving computed keys against home.
func (vm *VM) applyMethods(f *Frame, methods []bytecode.MethodInit, target, home *value.Object) error {
	for _, m := range methods {
		key, err := vm.resolveKey(f, methodKeyAdapter(m), home)
		if err != nil {
			return err
		}
		cl := vm.makeMethodClosure(f, m.Fn, home)
		fn := vm.closureObject(cl)
		switch m.Kind {
		case bytecode.MethodGetter:
			existing, _ := target.OwnProperty(key)
			target.DefineOwnAccessorProperty(key, fn, existing.Set, false, true)
		case bytecode.MethodSetter:
			existing, _ := target.OwnProperty(key)
			target.DefineOwnAccessorProperty(key, existing.Get, fn, false, true)
		default:
			target.DefineOwnDataProperty(key, value.Object_(fn), true, false, true)
		}
	}
	return nil
}

// buildFieldClosures resolves proto's (non-static) field keys and
// closes over their initializer bodies exactly once, at
// class-definition time. The resulting list is
// stashed on the constructor's closure and re-run against a fresh
// `this` on every construction.
func (vm *VM) buildFieldClosures(f *Frame, fields []bytecode.FieldInit, home *value.Object) ([]bytecode.FieldClosure, error) {
	out := make([]bytecode.FieldClosure, 0, len(fields))
	for _, fi := range fields {
		key, err := vm.resolveKey(f, fieldKeyAdapter(fi), home)
		if err != nil {
			return nil, err
		}
		fc := bytecode.FieldClosure{Key: key}
		if fi.Init != nil {
			fc.Init = vm.makeMethodClosure(f, fi.Init, home)
		}
		out = append(out, fc)
	}
	return out, nil
}

// applyInstanceFields runs a constructor's pre-built field closures
// against this, in declaration order: fields initialize top to bottom,
// immediately after super() for a derived class, immediately on entry
// for a base class.
func (vm *VM) applyInstanceFields(fields []bytecode.FieldClosure, this value.Value) error {
	for _, fc := range fields {
		v := value.Undefined
		if fc.Init != nil {
			var err error
			v, err = vm.call(fc.Init, this, nil, value.Undefined)
			if err != nil {
				return err
			}
		}
		this.Obj().DefineOwnDataProperty(fc.Key, v, true, true, true)
	}
	return nil
}

// instantiateClass implements ClassDefinitionEvaluation: build the
// prototype object (rooted at the superclass's prototype, or
// Object.prototype for a base class), the constructor function
// (rooted, for static inheritance, at the superclass constructor),
// install every method/field/static block, and run static
// initializers in source order.
func (vm *VM) instantiateClass(f *Frame, proto *bytecode.ClassProto, superCtor value.Value) (value.Value, error) {
	var superCtorObj *value.Object
	instProto := vm.Realm.ObjectPrototype
	ctorProtoParent := vm.Realm.FunctionPrototype
	if proto.HasSuperClass {
		switch {
		case superCtor.IsNull():
			instProto = nil
		case superCtor.IsObject() && superCtor.Obj().Callable != nil:
			superCtorObj = superCtor.Obj()
			ctorProtoParent = superCtorObj
			if p, _, ok := superCtorObj.GetProperty(value.StringKey(atom.Prototype)); ok {
				if p.Value.IsObject() {
					instProto = p.Value.Obj()
				} else if p.Value.IsNull() {
					instProto = nil
				}
			}
		default:
			return value.Undefined, vm.typeError("Class extends value is not a constructor and not null")
		}
	}
	protoObj := value.NewObject(instProto)

	ctorCl := vm.makeMethodClosure(f, proto.Ctor, protoObj)
	ctorCl.SuperCtor = superCtorObj
	fieldClosures, err := vm.buildFieldClosures(f, proto.Fields, protoObj)
	if err != nil {
		return value.Undefined, err
	}
	ctorCl.InstanceFields = fieldClosures
	ctorFn := vm.closureObject(ctorCl)
	ctorFn.Callable.Kind = value.FunctionClassConstructor
	ctorFn.Proto = ctorProtoParent
	ctorFn.DefineOwnDataProperty(value.StringKey(atom.Prototype), value.Object_(protoObj), false, false, false)
	protoObj.DefineOwnDataProperty(value.StringKey(atom.Constructor), value.Object_(ctorFn), true, false, true)
	if proto.Name != "" {
		ctorFn.DefineOwnDataProperty(value.StringKey(atom.Name), value.String(proto.Name), false, false, true)
	}

	if err := vm.applyMethods(f, proto.Methods, protoObj, protoObj); err != nil {
		return value.Undefined, err
	}
	if err := vm.applyMethods(f, proto.StaticMethods, ctorFn, ctorFn); err != nil {
		return value.Undefined, err
	}
	for _, fi := range proto.StaticFields {
		key, err := vm.resolveKey(f, fieldKeyAdapter(fi), ctorFn)
		if err != nil {
			return value.Undefined, err
		}
		v := value.Undefined
		if fi.Init != nil {
			cl := vm.makeMethodClosure(f, fi.Init, ctorFn)
			v, err = vm.call(cl, value.Object_(ctorFn), nil, value.Undefined)
			if err != nil {
				return value.Undefined, err
			}
		}
		ctorFn.DefineOwnDataProperty(key, v, true, true, true)
	}
	for _, blockProto := range proto.StaticBlocks {
		cl := vm.makeMethodClosure(f, blockProto, ctorFn)
		if _, err := vm.call(cl, value.Object_(ctorFn), nil, value.Undefined); err != nil {
			return value.Undefined, err
		}
	}

	return value.Object_(ctorFn), nil
}

// superGetProp/superSetProp implement `super.prop`/`super.prop = v`:
// the lookup starts at the home object's prototype (the superclass's
// prototype, for an instance method) but `this` still receives the
// property access, so an inherited accessor runs with the subclass
// instance as `this`.
func (vm *VM) superGetProp(f *Frame, key value.Value, name atom.Atom, computed bool) (value.Value, error) {
	if f.homeObj == nil || f.homeObj.Proto == nil {
		return value.Undefined, vm.typeError("'super' keyword is only valid inside a method")
	}
	pk := value.StringKey(name)
	if computed {
		var err error
		pk, err = vm.toPropertyKey(key)
		if err != nil {
			return value.Undefined, err
		}
	}
	slot, _, ok := f.homeObj.Proto.GetProperty(pk)
	if !ok {
		return value.Undefined, nil
	}
	if slot.Accessor {
		if slot.Get == nil {
			return value.Undefined, nil
		}
		return vm.callValue(value.Object_(slot.Get), f.this, nil, value.Undefined)
	}
	return slot.Value, nil
}

func (vm *VM) superSetProp(f *Frame, key value.Value, name atom.Atom, computed bool, v value.Value) error {
	if f.homeObj == nil || f.homeObj.Proto == nil {
		return vm.typeError("'super' keyword is only valid inside a method")
	}
	pk := value.StringKey(name)
	if computed {
		var err error
		pk, err = vm.toPropertyKey(key)
		if err != nil {
			return err
		}
	}
	if slot, _, ok := f.homeObj.Proto.GetProperty(pk); ok && slot.Accessor {
		if slot.Set != nil {
			_, err := vm.callValue(value.Object_(slot.Set), f.this, []value.Value{v}, value.Undefined)
			return err
		}
		return nil
	}
	if f.this.IsObject() {
		f.this.Obj().DefineOwnDataProperty(pk, v, true, true, true)
	}
	return nil
}

// superCall implements `super(...)` inside a derived constructor:
// invoke the direct superclass constructor with the current args,
// bind the result as this frame's `this`, and — since the instance
// now exists — run this class's own instance field initializers.
func (vm *VM) superCall(f *Frame, args []value.Value) (value.Value, error) {
	if f.closure.SuperCtor == nil {
		return value.Undefined, vm.typeError("'super' keyword is unexpected here")
	}
	newTarget := f.newTarget
	if !newTarget.IsObject() {
		newTarget = value.Object_(f.closure.SuperCtor)
	}
	this, err := vm.construct(value.Object_(f.closure.SuperCtor), args, newTarget)
	if err != nil {
		return value.Undefined, err
	}
	f.this = this
	if err := vm.applyInstanceFields(f.closure.InstanceFields, this); err != nil {
		return value.Undefined, err
	}
	return this, nil
}
