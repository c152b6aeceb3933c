// Package value implements the engine's Value and Object model: the
// tagged Value union, property keys, shape-based property storage,
// the prototype chain, and property descriptors.
package value

import (
	"math"
	"math/big"

	"github.com/go-ecmascript/ecmascript/internal/atom"
)

// Kind discriminates the Value union's variants.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a discriminated union over the eight ECMAScript language
// types. It is a plain struct (not an interface) so that comparisons,
// switches, and copies are cheap and value semantics are obvious at
// call sites.
type Value struct {
	kind Kind
	b    bool
	n    float64
	bi   *big.Int
	s    string
	sym  *Symbol
	obj  *Object
}

var (
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBoolean, b: true}
	False     = Value{kind: KindBoolean, b: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

func Int(n int) Value { return Value{kind: KindNumber, n: float64(n)} }

func BigIntValue(bi *big.Int) Value { return Value{kind: KindBigInt, bi: bi} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func SymbolValue(s *Symbol) Value { return Value{kind: KindSymbol, sym: s} }

func Object_(o *Object) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindUndefined || v.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.kind == KindNumber }
func (v Value) IsBigInt() bool    { return v.kind == KindBigInt }
func (v Value) IsString() bool    { return v.kind == KindString }
func (v Value) IsSymbol() bool    { return v.kind == KindSymbol }
func (v Value) IsObject() bool    { return v.kind == KindObject }

func (v Value) Bool() bool       { return v.b }
func (v Value) Float() float64   { return v.n }
func (v Value) BigInt() *big.Int { return v.bi }
func (v Value) Str() string      { return v.s }
func (v Value) Sym() *Symbol     { return v.sym }
func (v Value) Obj() *Object     { return v.obj }

// ToBoolean implements the abstract ToBoolean operation (used by
// every truthiness test in the VM).
func (v Value) ToBoolean() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindBigInt:
		return v.bi.Sign() != 0
	case KindString:
		return v.s != ""
	case KindSymbol, KindObject:
		return true
	}
	return false
}

// TypeOf implements the `typeof` operator, including the historical
// `"object"` result for null.
func (v Value) TypeOf() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		if v.obj != nil && v.obj.Callable != nil {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// StrictEquals implements `===`.
func StrictEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n // NaN!=NaN, +0==-0 per IEEE-754, exactly what === wants
	case KindBigInt:
		return a.bi.Cmp(b.bi) == 0
	case KindString:
		return a.s == b.s
	case KindSymbol:
		return a.sym == b.sym
	case KindObject:
		return a.obj == b.obj
	}
	return false
}

// SameValue implements Object.is: like StrictEquals but NaN equals NaN
// and +0 does not equal -0.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindNumber {
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		if a.n == 0 && b.n == 0 {
			return math.Signbit(a.n) == math.Signbit(b.n)
		}
		return a.n == b.n
	}
	return StrictEquals(a, b)
}

// SameValueZero is SameValue except +0 and -0 are equal; this is the
// relation Map/Set keys use for de-duplication.
func SameValueZero(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == KindNumber {
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	}
	return StrictEquals(a, b)
}

// Symbol is a unique identity, optionally carrying a description and,
// for registry symbols (Symbol.for), the key it was registered under.
type Symbol struct {
	Description string
	HasDesc     bool
	RegistryKey string
	IsRegistry  bool
}

func NewSymbol(desc string, hasDesc bool) *Symbol {
	return &Symbol{Description: desc, HasDesc: hasDesc}
}

// WellKnownSymbolIterator and WellKnownSymbolAsyncIterator are the two
// well-known symbols the VM's iteration opcodes require.
var (
	WellKnownSymbolIterator      = NewSymbol("Symbol.iterator", true)
	WellKnownSymbolAsyncIterator = NewSymbol("Symbol.asyncIterator", true)
)

// PropertyKey is either an interned string atom or a Symbol identity.
type PropertyKey struct {
	Atom atom.Atom
	Sym  *Symbol
}

func StringKey(a atom.Atom) PropertyKey { return PropertyKey{Atom: a} }
func SymbolKey(s *Symbol) PropertyKey   { return PropertyKey{Sym: s} }

func (k PropertyKey) IsSymbol() bool { return k.Sym != nil }

// ArrayIndex reports whether this key is a canonical array index
// (a string atom that round-trips through decimal formatting),
// returning the index and true if so.
func (k PropertyKey) ArrayIndex(table *atom.Table) (uint32, bool) {
	if k.Sym != nil {
		return 0, false
	}
	s, ok := table.GetString(k.Atom)
	if !ok {
		return 0, false
	}
	return parseArrayIndex(s)
}

func parseArrayIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + uint64(s[i]-'0')
		if n > math.MaxUint32 {
			return 0, false
		}
	}
	if n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
