package ecmascript

import "github.com/go-ecmascript/ecmascript/internal/value"

// Value is the host-facing handle on an evaluated ECMAScript value.
// It wraps the internal representation
// so an embedder never needs to import internal/value directly.
type Value struct {
	raw value.Value
	ctx *Context
}

func wrapValue(v value.Value, ctx *Context) Value { return Value{raw: v, ctx: ctx} }

func (v Value) IsUndefined() bool { return v.raw.IsUndefined() }
func (v Value) IsNull() bool      { return v.raw.IsNull() }
func (v Value) IsBoolean() bool   { return v.raw.IsBoolean() }
func (v Value) IsNumber() bool    { return v.raw.IsNumber() }
func (v Value) IsBigInt() bool    { return v.raw.IsBigInt() }
func (v Value) IsString() bool    { return v.raw.IsString() }
func (v Value) IsSymbol() bool    { return v.raw.IsSymbol() }
func (v Value) IsObject() bool    { return v.raw.IsObject() }

// TypeOf returns the ECMAScript `typeof` classification.
func (v Value) TypeOf() string { return v.raw.TypeOf() }

// ToBoolean applies ToBoolean coercion.
func (v Value) ToBoolean() bool { return v.raw.ToBoolean() }

// Float64 returns the Number value's underlying float64; ok is false
// for any non-Number value.
func (v Value) Float64() (f float64, ok bool) {
	if !v.raw.IsNumber() {
		return 0, false
	}
	return v.raw.Float(), true
}

// String applies the abstract ToString coercion, the way
// a host embedder stringifies a returned value for display.
func (v Value) String() string {
	if v.ctx == nil {
		return v.raw.TypeOf()
	}
	s, err := v.ctx.vm.ToString(v.raw)
	if err != nil {
		return "<uncoercible>"
	}
	return s
}

// Equals applies SameValue (Object.is semantics), the strictest of
// the three ECMAScript equality relations.
func (v Value) Equals(other Value) bool { return value.SameValue(v.raw, other.raw) }
