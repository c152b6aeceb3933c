package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// getIterator implements the GetIterator abstract operation: resolve
// Symbol.iterator (or Symbol.asyncIterator) off v and call it with no
// arguments, returning the resulting iterator object.
func (vm *VM) getIterator(v value.Value, async bool) (value.Value, error) {
	sym := value.WellKnownSymbolIterator
	if async {
		sym = value.WellKnownSymbolAsyncIterator
	}
	method, err := vm.getProperty(v, value.SymbolKey(sym))
	if err != nil {
		return value.Undefined, err
	}
	if !method.IsObject() || method.Obj().Callable == nil {
		if async {
			// Fall back to the sync iterator: for-await over a plain
			// sync iterable uses it directly, since every value it
			// yields is already available with no real suspension.
			return vm.getIterator(v, false)
		}
		return value.Undefined, vm.typeError("%s is not iterable", vm.displayOf(v))
	}
	return vm.callValue(method, v, nil, value.Undefined)
}

// iteratorNext implements IteratorNext + IteratorComplete + IteratorValue.
func (vm *VM) iteratorNext(iter value.Value) (value.Value, bool, error) {
	next, err := vm.getProperty(iter, value.StringKey(atom.Next))
	if err != nil {
		return value.Undefined, false, err
	}
	if !next.IsObject() || next.Obj().Callable == nil {
		return value.Undefined, false, vm.typeError("iterator.next is not a function")
	}
	res, err := vm.callValue(next, iter, nil, value.Undefined)
	if err != nil {
		return value.Undefined, false, err
	}
	if !res.IsObject() {
		return value.Undefined, false, vm.typeError("Iterator result is not an object")
	}
	doneSlot, err := vm.getProperty(res, value.StringKey(atom.Done))
	if err != nil {
		return value.Undefined, false, err
	}
	valSlot, err := vm.getProperty(res, value.StringKey(atom.Value))
	if err != nil {
		return value.Undefined, false, err
	}
	return valSlot, doneSlot.ToBoolean(), nil
}

// enumKeyIterator builds the key iterator for-in loops walk: every
// enumerable string key of v and its prototype chain, own keys first,
// each name visited once. for-in over null/undefined visits nothing.
func (vm *VM) enumKeyIterator(v value.Value) (value.Value, error) {
	var names []string
	if !v.IsNullish() {
		obj, err := vm.toObject(v)
		if err != nil {
			return value.Undefined, err
		}
		seen := make(map[string]bool)
		for cur := obj; cur != nil; cur = cur.Proto {
			for _, k := range cur.OwnKeys(vm.Atoms) {
				if k.IsSymbol() {
					continue
				}
				// Element keys never appear as named slots; they are
				// always enumerable.
				if slot, ok := cur.OwnProperty(k); ok && !slot.Enumerable {
					continue
				}
				s := vm.Atoms.MustGetString(k.Atom)
				if !seen[s] {
					seen[s] = true
					names = append(names, s)
				}
			}
		}
	}
	idx := 0
	iter := value.NewObject(vm.Realm.ObjectPrototype)
	vm.defineMethod(iter, "next", 0, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		if idx < len(names) {
			v := value.String(names[idx])
			idx++
			return vm.iterResult(v, false), nil
		}
		return vm.iterResult(value.Undefined, true), nil
	})
	return value.Object_(iter), nil
}

// iteratorClose invokes iter.return(), if present, swallowing any
// error: it runs as a courtesy cleanup on abrupt completion and must
// never itself mask the original completion.
func (vm *VM) iteratorClose(iter value.Value) {
	if !iter.IsObject() {
		return
	}
	ret, err := vm.getProperty(iter, value.StringKey(atom.Return))
	if err != nil || !ret.IsObject() || ret.Obj().Callable == nil {
		return
	}
	vm.callValue(ret, iter, nil, value.Undefined)
}

// iteratorDrainToArray runs iter to completion, collecting every
// yielded value into a fresh array (array-destructuring's `...rest`).
func (vm *VM) iteratorDrainToArray(iter value.Value) (value.Value, error) {
	var elems []value.Value
	for {
		v, done, err := vm.iteratorNext(iter)
		if err != nil {
			return value.Undefined, err
		}
		if done {
			break
		}
		elems = append(elems, v)
	}
	return value.Object_(value.NewArray(vm.Realm.ArrayPrototype, elems)), nil
}
