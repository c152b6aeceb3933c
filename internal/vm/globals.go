package vm

import (
	"math"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/promise"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// installGlobals wires the minimal global bindings a hosted script can
// observe (realm.go's contract): `globalThis`, the error constructor
// family, `Promise`, `Symbol`, and the generator prototype's methods.
// Everything else — Array/Object/Map's built-in method surface, the
// REPL, module-loader file I/O — is an explicit Non-goal
// left to the embedder as an external collaborator.
func (vm *VM) installGlobals(r *Realm) {
	installGeneratorPrototype(vm, r)

	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("globalThis")), value.Object_(r.GlobalObject), true, false, true)
	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("undefined")), value.Undefined, false, false, false)
	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("NaN")), value.Number(math.NaN()), false, false, false)
	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("Infinity")), value.Number(math.Inf(1)), false, false, false)

	vm.installErrorConstructors(r)
	vm.installPromiseConstructor(r)
	vm.installSymbolConstructor(r)
	vm.installIteratorProtocols(r)

	vm.defineMethod(r.GlobalObject, "queueMicrotask", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		fn := arg(args, 0)
		if !fn.IsObject() || fn.Obj().Callable == nil {
			return value.Undefined, vm.typeError("queueMicrotask argument must be a function")
		}
		r.Microtasks.Enqueue(func() { vm.callValue(fn, value.Undefined, nil, value.Undefined) })
		return value.Undefined, nil
	})
}

// installErrorConstructors builds Error and its six subclasses
// (TypeError, RangeError, ReferenceError, SyntaxError, EvalError,
// URIError), each constructible with an optional message argument and
// rooted at the matching prototype realm.go already created.
func (vm *VM) installErrorConstructors(r *Realm) {
	makeCtor := func(kind string, proto *value.Object) *value.Object {
		ctor := vm.nativeFunction(kind, 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			o := value.NewObject(proto)
			o.Class = "Error"
			msg := arg(args, 0)
			if !msg.IsUndefined() {
				s, err := vm.toString(msg)
				if err != nil {
					return value.Undefined, err
				}
				o.DefineOwnDataProperty(value.StringKey(atom.Message), value.String(s), true, false, true)
			}
			return value.Object_(o), nil
		})
		ctor.Callable.Kind = value.FunctionClassConstructor
		ctor.DefineOwnDataProperty(value.StringKey(atom.Prototype), value.Object_(proto), false, false, false)
		proto.DefineOwnDataProperty(value.StringKey(atom.Constructor), value.Object_(ctor), true, false, true)
		r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern(kind)), value.Object_(ctor), true, false, true)
		return ctor
	}
	errorCtor := makeCtor("Error", r.ErrorPrototype)
	for _, kind := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		sub := makeCtor(kind, r.ErrorPrototypes[kind])
		sub.Proto = errorCtor
	}
}

// installPromiseConstructor builds the Promise constructor (executor
// form), its prototype's then/catch/finally, and the resolve/reject
// statics: the subset of the Promise built-in async/await and the
// reaction machinery require a host to expose.
func (vm *VM) installPromiseConstructor(r *Realm) {
	ctor := vm.nativeFunction("Promise", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		executor := arg(args, 0)
		if !executor.IsObject() || executor.Obj().Callable == nil {
			return value.Undefined, vm.typeError("Promise resolver is not a function")
		}
		o := value.NewObject(r.PromisePrototype)
		o.Class = "Promise"
		cap := promise.NewCapability(o, r.Microtasks)
		resolveFn := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			cap.Resolve(arg(args, 0))
			return value.Undefined, nil
		})
		rejectFn := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			cap.Reject(arg(args, 0))
			return value.Undefined, nil
		})
		if _, err := vm.callValue(executor, value.Undefined, []value.Value{value.Object_(resolveFn), value.Object_(rejectFn)}, value.Undefined); err != nil {
			if je, ok := err.(*jsError); ok {
				cap.Reject(je.val)
			} else {
				return value.Undefined, err
			}
		}
		return value.Object_(o), nil
	})
	ctor.Callable.Kind = value.FunctionClassConstructor
	ctor.DefineOwnDataProperty(value.StringKey(atom.Prototype), value.Object_(r.PromisePrototype), false, false, false)
	r.PromisePrototype.DefineOwnDataProperty(value.StringKey(atom.Constructor), value.Object_(ctor), true, false, true)
	r.PromiseConstructor = ctor

	vm.defineMethod(ctor, "resolve", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		return value.Object_(vm.promiseResolveValue(arg(args, 0))), nil
	})
	vm.defineMethod(ctor, "reject", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		o := value.NewObject(r.PromisePrototype)
		o.Class = "Promise"
		cap := promise.NewCapability(o, r.Microtasks)
		cap.Reject(arg(args, 0))
		return value.Object_(o), nil
	})

	vm.defineMethod(r.PromisePrototype, "then", 2, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		if !this.IsObject() {
			return value.Undefined, vm.typeError("Promise.prototype.then called on non-object")
		}
		p, ok := this.Obj().Internal.(*promise.Promise)
		if !ok {
			return value.Undefined, vm.typeError("Promise.prototype.then called on a non-promise")
		}
		onFulfilled := asCallable(arg(args, 0))
		onRejected := asCallable(arg(args, 1))
		resObj := value.NewObject(r.PromisePrototype)
		resObj.Class = "Promise"
		cap := promise.NewCapability(resObj, r.Microtasks)
		p.Then(onFulfilled, onRejected, cap)
		return value.Object_(resObj), nil
	})
	vm.defineMethod(r.PromisePrototype, "catch", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		thenFn, _, ok := this.Obj().GetProperty(value.StringKey(vm.Atoms.Intern("then")))
		if !ok {
			return value.Undefined, vm.typeError("Promise.prototype.catch: then is missing")
		}
		return vm.callValue(value.Object_(thenFn.Value.Obj()), this, []value.Value{value.Undefined, arg(args, 0)}, value.Undefined)
	})
	vm.defineMethod(r.PromisePrototype, "finally", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		onFinally := arg(args, 0)
		wrap := func(passthrough bool) *value.Object {
			return vm.nativeFunction("", 1, func(vm *VM, this value.Value, cargs []value.Value, nt value.Value) (value.Value, error) {
				if onFinally.IsObject() && onFinally.Obj().Callable != nil {
					if _, err := vm.callValue(onFinally, value.Undefined, nil, value.Undefined); err != nil {
						return value.Undefined, err
					}
				}
				v := arg(cargs, 0)
				if passthrough {
					return v, nil
				}
				return value.Undefined, &jsError{val: v}
			})
		}
		thenFn, _, ok := this.Obj().GetProperty(value.StringKey(vm.Atoms.Intern("then")))
		if !ok {
			return value.Undefined, vm.typeError("Promise.prototype.finally: then is missing")
		}
		return vm.callValue(value.Object_(thenFn.Value.Obj()), this, []value.Value{value.Object_(wrap(true)), value.Object_(wrap(false))}, value.Undefined)
	})

	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("Promise")), value.Object_(ctor), true, false, true)
}

func asCallable(v value.Value) *value.Object {
	if v.IsObject() && v.Obj().Callable != nil {
		return v.Obj()
	}
	return nil
}

// installSymbolConstructor installs the `Symbol` factory function plus
// its two well-known-symbol properties (iterator/asyncIterator) that
// the for-of/for-await-of opcodes resolve by value.
func (vm *VM) installSymbolConstructor(r *Realm) {
	ctor := vm.nativeFunction("Symbol", 0, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		desc := arg(args, 0)
		if desc.IsUndefined() {
			return value.SymbolValue(value.NewSymbol("", false)), nil
		}
		s, err := vm.toString(desc)
		if err != nil {
			return value.Undefined, err
		}
		return value.SymbolValue(value.NewSymbol(s, true)), nil
	})
	ctor.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("iterator")), value.SymbolValue(value.WellKnownSymbolIterator), false, false, false)
	ctor.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("asyncIterator")), value.SymbolValue(value.WellKnownSymbolAsyncIterator), false, false, false)
	vm.defineMethod(ctor, "for", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		key, err := vm.toString(arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		sym := value.NewSymbol(key, true)
		sym.IsRegistry = true
		sym.RegistryKey = key
		return value.SymbolValue(sym), nil
	})
	r.GlobalObject.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern("Symbol")), value.Object_(ctor), true, false, true)
}

// installIteratorProtocols gives arrays and strings their built-in
// Symbol.iterator, which for-of, spread, and array destructuring all
// resolve through rather than special-casing either type.
func (vm *VM) installIteratorProtocols(r *Realm) {
	vm.defineMethodSymbol(r.ArrayPrototype, value.WellKnownSymbolIterator, "[Symbol.iterator]", 0,
		func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			if !this.IsObject() {
				return value.Undefined, vm.typeError("array iterator called on a non-object")
			}
			arr := this.Obj()
			idx := 0
			iter := value.NewObject(r.IteratorPrototype)
			vm.defineMethod(iter, "next", 0, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
				if idx < arr.ArrayLength() {
					v, _ := arr.GetElement(uint32(idx))
					idx++
					return vm.iterResult(v, false), nil
				}
				return vm.iterResult(value.Undefined, true), nil
			})
			return value.Object_(iter), nil
		})

	vm.defineMethodSymbol(r.StringPrototype, value.WellKnownSymbolIterator, "[Symbol.iterator]", 0,
		func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			s, err := vm.toString(this)
			if err != nil {
				return value.Undefined, err
			}
			runes := []rune(s)
			idx := 0
			iter := value.NewObject(r.IteratorPrototype)
			vm.defineMethod(iter, "next", 0, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
				if idx < len(runes) {
					v := value.String(string(runes[idx]))
					idx++
					return vm.iterResult(v, false), nil
				}
				return vm.iterResult(value.Undefined, true), nil
			})
			return value.Object_(iter), nil
		})
}

// wirePromiseQueue installs the three callbacks the promise package
// needs but cannot implement itself (it has no upward dependency on
// value/vm's Get/Call machinery): thenable detection, the thenable
// chaining job, and the reaction-running job.
func (vm *VM) wirePromiseQueue(r *Realm) {
	r.Microtasks.SetThenableCheck(func(v value.Value) (value.Value, bool) {
		if !v.IsObject() {
			return value.Undefined, false
		}
		thenFn, _, ok := v.Obj().GetProperty(value.StringKey(vm.Atoms.Intern("then")))
		if !ok || !thenFn.Value.IsObject() || thenFn.Value.Obj().Callable == nil {
			return value.Undefined, false
		}
		return thenFn.Value, true
	})

	r.Microtasks.ThenableJob = func(thenable, thenFn value.Value, cap *promise.Capability) {
		resolveFn := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			cap.Resolve(arg(args, 0))
			return value.Undefined, nil
		})
		rejectFn := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
			cap.Reject(arg(args, 0))
			return value.Undefined, nil
		})
		if _, err := vm.callValue(thenFn, thenable, []value.Value{value.Object_(resolveFn), value.Object_(rejectFn)}, value.Undefined); err != nil {
			if je, ok := err.(*jsError); ok {
				cap.Reject(je.val)
			}
		}
	}

	r.Microtasks.ReactionRunner = func(reac promise.Reaction, state promise.PromiseState, v value.Value) {
		var handler *value.Object
		if state == promise.Fulfilled {
			handler = reac.OnFulfilled
		} else {
			handler = reac.OnRejected
		}
		if reac.Capability == nil {
			if handler != nil {
				vm.callValue(value.Object_(handler), value.Undefined, []value.Value{v}, value.Undefined)
			}
			return
		}
		if handler == nil {
			if state == promise.Fulfilled {
				reac.Capability.Resolve(v)
			} else {
				reac.Capability.Reject(v)
			}
			return
		}
		res, err := vm.callValue(value.Object_(handler), value.Undefined, []value.Value{v}, value.Undefined)
		if err != nil {
			if je, ok := err.(*jsError); ok {
				reac.Capability.Reject(je.val)
			} else {
				reac.Capability.Reject(value.String(err.Error()))
			}
			return
		}
		reac.Capability.Resolve(res)
	}
}
