package value

// NewArray builds an Array exotic object whose elements occupy the
// dense fast-path store up front; callers needing holes can still
// shrink/grow Elements directly since this package exposes the field.
func NewArray(proto *Object, elements []Value) *Object {
	o := &Object{Class: "Array", Proto: proto, Extensible: true, shape: RootShape}
	o.Elements = append([]Value(nil), elements...)
	o.ElementsUsed = len(elements)
	return o
}

// ArrayLength returns the array's current length (one past the
// highest populated dense index; sparse/"length" overrides that
// exceed the dense store are tracked via the ordinary "length" data
// property instead, which callers should prefer when present).
func (o *Object) ArrayLength() int { return o.ElementsUsed }

// SetArrayLength grows or truncates the dense element store.
func (o *Object) SetArrayLength(n int) {
	if n <= o.ElementsUsed {
		for i := n; i < o.ElementsUsed; i++ {
			o.Elements[i] = Undefined
		}
		o.ElementsUsed = n
		o.Elements = o.Elements[:n]
		return
	}
	for len(o.Elements) < n {
		o.Elements = append(o.Elements, Undefined)
	}
	o.ElementsUsed = n
}

// GetElement returns the element at index and whether it is populated
// (within bounds; this store has no hole tracking below ElementsUsed,
// matching the common case of dense arrays built by literals/push).
func (o *Object) GetElement(index uint32) (Value, bool) {
	if int(index) >= o.ElementsUsed {
		return Undefined, false
	}
	return o.Elements[index], true
}

// SetElement writes index, growing the dense store (and filling any
// gap with Undefined) as needed.
func (o *Object) SetElement(index uint32, v Value) {
	n := int(index)
	for len(o.Elements) <= n {
		o.Elements = append(o.Elements, Undefined)
	}
	if n >= o.ElementsUsed {
		o.ElementsUsed = n + 1
	}
	o.Elements[n] = v
}

// NewFunction builds a function object of the given kind backed by
// payload (a *bytecode.FunctionObject or native implementation,
// opaque to this package).
func NewFunction(proto *Object, name string, length int, kind FunctionKind, payload any) *Object {
	o := &Object{Class: "Function", Proto: proto, Extensible: true, shape: RootShape}
	o.Callable = &FunctionData{Name: name, Length: length, Kind: kind, Payload: payload}
	return o
}
