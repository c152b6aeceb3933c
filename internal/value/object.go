package value

import (
	"sort"

	"github.com/go-ecmascript/ecmascript/internal/atom"
)

// PropSlot is the storage for one named property: either a data slot
// (Value/Writable) or an accessor slot (Get/Set), always carrying the
// Enumerable and Configurable attributes.
type PropSlot struct {
	Value        Value
	Get, Set     *Object
	Accessor     bool
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Object is the runtime representation shared by every ECMAScript
// object — plain objects, arrays, functions, errors, and the exotic
// built-ins all embed this. Named properties live either in the
// shape-indexed `slots` (the common case) or, once a property has
// been deleted, in `dict` (dictionary mode: shapes cannot express
// gaps, so a deletion demotes the object permanently).
// Dense integer-indexed elements get their own fast-path storage.
type Object struct {
	Class      string // "Object", "Array", "Function", "Error", "Promise", ...
	Proto      *Object
	Extensible bool

	shape *Shape
	slots []PropSlot
	dict  map[PropertyKey]*PropSlot // non-nil only once in dictionary mode
	dictOrder []PropertyKey         // insertion order of dict keys, minus deletions

	Elements     []Value // dense array backing store, index == array index
	ElementsUsed int     // number of Elements slots actually populated (rest are holes)

	Callable *FunctionData // non-nil for function objects

	// Internal slots for exotic objects (boxed primitives, Map/Set
	// backing stores, Promise state, Date). Concrete packages type-
	// assert this to their own internal-slot struct; kept as `any`
	// here so this package stays free of upward dependencies.
	Internal any
}

func NewObject(proto *Object) *Object {
	return &Object{Class: "Object", Proto: proto, Extensible: true, shape: RootShape}
}

func (o *Object) inDictionaryMode() bool { return o.dict != nil }

func (o *Object) demoteToDictionary() {
	if o.dict != nil {
		return
	}
	o.dict = make(map[PropertyKey]*PropSlot, len(o.slots))
	entries := o.shape.Entries()
	for i, e := range entries {
		slot := o.slots[i]
		o.dict[e.Key] = &slot
		o.dictOrder = append(o.dictOrder, e.Key)
	}
	o.shape = nil
	o.slots = nil
}

func (o *Object) dictSet(key PropertyKey, slot *PropSlot) {
	if _, exists := o.dict[key]; !exists {
		o.dictOrder = append(o.dictOrder, key)
	}
	o.dict[key] = slot
}

// OwnProperty looks up a named (non-element) own property slot.
func (o *Object) OwnProperty(key PropertyKey) (PropSlot, bool) {
	if o.dict != nil {
		s, ok := o.dict[key]
		if !ok {
			return PropSlot{}, false
		}
		return *s, true
	}
	entry, idx, ok := o.shape.Find(key)
	if !ok {
		return PropSlot{}, false
	}
	slot := o.slots[idx]
	slot.Writable, slot.Enumerable, slot.Configurable, slot.Accessor =
		entry.Writable, entry.Enumerable, entry.Configurable, entry.Accessor
	return slot, true
}

// DefineOwnDataProperty creates or overwrites a data property,
// transitioning the object's shape (or updating its dictionary entry)
// as needed.
func (o *Object) DefineOwnDataProperty(key PropertyKey, v Value, writable, enumerable, configurable bool) {
	if o.dict != nil {
		o.dictSet(key, &PropSlot{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable})
		return
	}
	if entry, idx, ok := o.shape.Find(key); ok {
		if entry.Writable == writable && entry.Enumerable == enumerable &&
			entry.Configurable == configurable && !entry.Accessor {
			o.slots[idx].Value = v
			return
		}
		// Attribute change without removal: dictionary mode keeps this simple.
		o.demoteToDictionary()
		o.dictSet(key, &PropSlot{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable})
		return
	}
	entry := ShapeEntry{Key: key, Writable: writable, Enumerable: enumerable, Configurable: configurable}
	o.shape = o.shape.Transition(entry)
	o.slots = append(o.slots, PropSlot{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable})
}

// DefineOwnAccessorProperty creates or overwrites an accessor property.
func (o *Object) DefineOwnAccessorProperty(key PropertyKey, get, set *Object, enumerable, configurable bool) {
	if o.dict != nil {
		o.dictSet(key, &PropSlot{Get: get, Set: set, Accessor: true, Enumerable: enumerable, Configurable: configurable})
		return
	}
	if _, _, ok := o.shape.Find(key); ok {
		o.demoteToDictionary()
		o.dictSet(key, &PropSlot{Get: get, Set: set, Accessor: true, Enumerable: enumerable, Configurable: configurable})
		return
	}
	entry := ShapeEntry{Key: key, Enumerable: enumerable, Configurable: configurable, Accessor: true}
	o.shape = o.shape.Transition(entry)
	o.slots = append(o.slots, PropSlot{Get: get, Set: set, Accessor: true, Enumerable: enumerable, Configurable: configurable})
}

// DeleteOwnProperty removes a named property, demoting the object to
// dictionary mode if it was still shape-backed. Returns false if the
// property exists and is non-configurable.
func (o *Object) DeleteOwnProperty(key PropertyKey) bool {
	if o.dict == nil {
		if _, _, ok := o.shape.Find(key); !ok {
			return true
		}
		o.demoteToDictionary()
	}
	slot, ok := o.dict[key]
	if !ok {
		return true
	}
	if !slot.Configurable {
		return false
	}
	delete(o.dict, key)
	for i, k := range o.dictOrder {
		if k == key {
			o.dictOrder = append(o.dictOrder[:i], o.dictOrder[i+1:]...)
			break
		}
	}
	return true
}

// OwnKeys returns own property keys in spec-mandated order: integer
// array indices ascending, then string keys in insertion order, then
// symbol keys in insertion order.
func (o *Object) OwnKeys(table *atom.Table) []PropertyKey {
	type indexKey struct {
		key PropertyKey
		n   uint32
	}
	var indices []indexKey
	var strs []PropertyKey
	var syms []PropertyKey

	for i := 0; i < o.ElementsUsed; i++ {
		n := uint32(i)
		indices = append(indices, indexKey{StringKey(table.Intern(uitoa(n))), n})
	}

	classify := func(k PropertyKey) {
		if k.IsSymbol() {
			syms = append(syms, k)
			return
		}
		if n, ok := k.ArrayIndex(table); ok {
			indices = append(indices, indexKey{k, n})
			return
		}
		strs = append(strs, k)
	}

	if o.dict != nil {
		for _, k := range o.dictOrder {
			classify(k)
		}
	} else {
		for _, e := range o.shape.Entries() {
			classify(e.Key)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i].n < indices[j].n })
	out := make([]PropertyKey, 0, len(indices)+len(strs)+len(syms))
	for _, ik := range indices {
		out = append(out, ik.key)
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
}

func uitoa(n uint32) string {
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

// GetProperty walks the prototype chain, resolving accessors by
// returning the getter function object for the caller to invoke (the
// VM's call machinery lives above this package).
func (o *Object) GetProperty(key PropertyKey) (PropSlot, *Object, bool) {
	for cur := o; cur != nil; cur = cur.Proto {
		if slot, ok := cur.OwnProperty(key); ok {
			return slot, cur, true
		}
	}
	return PropSlot{}, nil, false
}

// FunctionData holds the parts of a function object the VM and
// compiler need that a plain data object doesn't: its callable kind
// and identity. Concrete bytecode/native payloads are attached by the
// bytecode and runtime packages via the Payload field, left generic
// here to avoid a package cycle.
type FunctionData struct {
	Name        string
	Length      int
	Kind        FunctionKind
	HomeObject  *Object // for super property lookups
	BoundThis   Value
	BoundArgs   []Value
	BoundTarget *Object
	Payload     any // *bytecode.FunctionObject or a native Go func, per Kind
}

type FunctionKind uint8

const (
	FunctionNormal FunctionKind = iota
	FunctionArrow
	FunctionMethod
	FunctionGetter
	FunctionSetter
	FunctionGenerator
	FunctionAsync
	FunctionAsyncGenerator
	FunctionClassConstructor
	FunctionNative
	FunctionBound
)
