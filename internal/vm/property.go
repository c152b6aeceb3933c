package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// getPropertyByAtom reads obj[name] for property-access opcodes whose
// key the compiler already resolved to an atom at compile time
// (`a.b`, not `a[b]`).
func (vm *VM) getPropertyByAtom(obj value.Value, name atom.Atom) (value.Value, error) {
	return vm.getProperty(obj, value.StringKey(name))
}

func (vm *VM) setPropertyByAtom(obj value.Value, name atom.Atom, v value.Value) error {
	return vm.setProperty(obj, value.StringKey(name), v)
}

func (vm *VM) deletePropertyByAtom(obj value.Value, name atom.Atom) bool {
	if !obj.IsObject() {
		return true
	}
	return obj.Obj().DeleteOwnProperty(value.StringKey(name))
}

// getPropertyByValue and setPropertyByValue serve computed member
// access (`a[b]`), where b must first be coerced to a property key.
func (vm *VM) getPropertyByValue(obj, key value.Value) (value.Value, error) {
	pk, err := vm.toPropertyKey(key)
	if err != nil {
		return value.Undefined, err
	}
	return vm.getProperty(obj, pk)
}

func (vm *VM) setPropertyByValue(obj, key, v value.Value) error {
	pk, err := vm.toPropertyKey(key)
	if err != nil {
		return err
	}
	return vm.setProperty(obj, pk, v)
}

func (vm *VM) deletePropertyByValue(obj, key value.Value) bool {
	pk, err := vm.toPropertyKey(key)
	if err != nil || !obj.IsObject() {
		return true
	}
	if idx, ok := pk.ArrayIndex(vm.Atoms); ok && obj.Obj().Class == "Array" {
		if _, ok := obj.Obj().GetElement(idx); ok {
			obj.Obj().SetElement(idx, value.Undefined)
			return true
		}
	}
	return obj.Obj().DeleteOwnProperty(pk)
}

// getProperty implements [[Get]]: array index fast path first, then
// the shape-indexed slot walk up the prototype chain, invoking an
// accessor's getter (if any) via callValue. Primitives auto-box long
// enough to resolve a method off their prototype (`"x".length`,
// `(3).toFixed`) without ever materializing a persistent wrapper.
func (vm *VM) getProperty(recv value.Value, key value.PropertyKey) (value.Value, error) {
	if recv.IsNullish() {
		name := "value"
		if !key.IsSymbol() {
			if s, ok := vm.Atoms.GetString(key.Atom); ok {
				name = s
			}
		}
		return value.Undefined, vm.typeError("Cannot read properties of %s (reading '%s')", vm.displayOf(recv), name)
	}
	if recv.IsString() {
		if v, ok := vm.stringProperty(recv.Str(), key); ok {
			return v, nil
		}
	}
	var obj *value.Object
	if recv.IsObject() {
		obj = recv.Obj()
	} else {
		boxed, err := vm.toObject(recv)
		if err != nil {
			return value.Undefined, err
		}
		obj = boxed
	}
	if obj.Class == "Array" && !key.IsSymbol() && key.Atom == atom.Length {
		if _, ok := obj.OwnProperty(key); !ok {
			return value.Int(obj.ArrayLength()), nil
		}
	}
	if idx, ok := key.ArrayIndex(vm.Atoms); ok {
		if v, ok := obj.GetElement(idx); ok {
			return v, nil
		}
	}
	slot, owner, ok := obj.GetProperty(key)
	if !ok {
		return value.Undefined, nil
	}
	if slot.Accessor {
		if slot.Get == nil {
			return value.Undefined, nil
		}
		_ = owner
		return vm.callValue(value.Object_(slot.Get), recv, nil, value.Undefined)
	}
	return slot.Value, nil
}

func (vm *VM) stringProperty(s string, key value.PropertyKey) (value.Value, bool) {
	if key.IsSymbol() {
		return value.Undefined, false
	}
	if key.Atom == atom.Length {
		return value.Int(value.UTF16Length(s)), true
	}
	if idx, ok := key.ArrayIndex(vm.Atoms); ok {
		units := value.UTF16Units(s)
		if int(idx) < len(units) {
			return value.String(value.UTF16FromUnits(units[idx : idx+1])), true
		}
		return value.Undefined, false
	}
	return value.Undefined, false
}

// setProperty implements [[Set]]: array fast path, then accessor
// invocation, else an ordinary data-property define/overwrite on the
// receiver itself (no prototype-chain write-through, matching
// ordinary [[Set]] semantics for own vs. inherited accessors only).
func (vm *VM) setProperty(recv value.Value, key value.PropertyKey, v value.Value) error {
	if recv.IsNullish() {
		return vm.typeError("Cannot set properties of %s", vm.displayOf(recv))
	}
	if !recv.IsObject() {
		return nil // writes to a boxed primitive are silently dropped, non-strict semantics
	}
	obj := recv.Obj()
	if idx, ok := key.ArrayIndex(vm.Atoms); ok && obj.Class == "Array" {
		obj.SetElement(idx, v)
		return nil
	}
	if slot, owner, ok := obj.GetProperty(key); ok && slot.Accessor {
		if slot.Set != nil {
			_, err := vm.callValue(value.Object_(slot.Set), recv, []value.Value{v}, value.Undefined)
			return err
		}
		_ = owner
		return nil
	}
	if existing, ok := obj.OwnProperty(key); ok && !existing.Writable && !existing.Accessor {
		return nil
	}
	obj.DefineOwnDataProperty(key, v, true, true, true)
	return nil
}

// appendSpread implements the array-literal spread element: iterate
// the spread source via the iterator protocol and push each yielded
// value onto the array under construction.
func (vm *VM) appendSpread(arrVal, src value.Value) error {
	iter, err := vm.getIterator(src, false)
	if err != nil {
		return err
	}
	arr := arrVal.Obj()
	for {
		v, done, err := vm.iteratorNext(iter)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		arr.SetElement(uint32(arr.ArrayLength()), v)
	}
}

// copyDataProperties implements the object-literal spread property
// (`{...src}`): every own enumerable property of src is copied onto
// dst, per spec's CopyDataProperties abstract operation.
func (vm *VM) copyDataProperties(dst, src value.Value) {
	if !src.IsObject() {
		return
	}
	srcObj := src.Obj()
	dstObj := dst.Obj()
	for i := 0; i < srcObj.ArrayLength(); i++ {
		v, ok := srcObj.GetElement(uint32(i))
		if !ok {
			continue
		}
		dstObj.DefineOwnDataProperty(value.StringKey(vm.Atoms.Intern(uitoaVM(uint32(i)))), v, true, true, true)
	}
	for _, k := range srcObj.OwnKeys(vm.Atoms) {
		slot, ok := srcObj.OwnProperty(k)
		if !ok || !slot.Enumerable {
			continue
		}
		v := slot.Value
		if slot.Accessor {
			if slot.Get == nil {
				continue
			}
			res, err := vm.callValue(value.Object_(slot.Get), src, nil, value.Undefined)
			if err != nil {
				continue
			}
			v = res
		}
		dstObj.DefineOwnDataProperty(k, v, true, true, true)
	}
}

// arrayToSlice reads out a plain Go slice from an array-like value,
// for spread-call argument lists and `...rest` array destructuring
// where the bytecode already guarantees an array object (built by
// OpNewArray/OpIteratorRestArray) rather than an arbitrary iterable.
func (vm *VM) arrayToSlice(v value.Value) []value.Value {
	if !v.IsObject() {
		return nil
	}
	o := v.Obj()
	out := make([]value.Value, o.ArrayLength())
	for i := range out {
		out[i], _ = o.GetElement(uint32(i))
	}
	return out
}

func uitoaVM(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
