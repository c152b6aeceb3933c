package value

import (
	"math"
	"math/big"
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/atom"
)

func TestEqualityRelations(t *testing.T) {
	nan := Number(math.NaN())
	posZero := Number(0)
	negZero := Number(math.Copysign(0, -1))
	obj := Object_(NewObject(nil))

	tests := []struct {
		name          string
		a, b          Value
		strict        bool
		sameValue     bool
		sameValueZero bool
	}{
		{"NaN vs NaN", nan, nan, false, true, true},
		{"+0 vs -0", posZero, negZero, true, false, true},
		{"1 vs 1", Number(1), Number(1), true, true, true},
		{"1 vs 2", Number(1), Number(2), false, false, false},
		{"same object", obj, obj, true, true, true},
		{"distinct objects", Object_(NewObject(nil)), Object_(NewObject(nil)), false, false, false},
		{"string vs string", String("x"), String("x"), true, true, true},
		{"undefined vs null", Undefined, Null, false, false, false},
		{"null vs null", Null, Null, true, true, true},
		{"bool vs number", True, Number(1), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrictEquals(tt.a, tt.b); got != tt.strict {
				t.Errorf("StrictEquals=%v, expected %v", got, tt.strict)
			}
			if got := SameValue(tt.a, tt.b); got != tt.sameValue {
				t.Errorf("SameValue=%v, expected %v", got, tt.sameValue)
			}
			if got := SameValueZero(tt.a, tt.b); got != tt.sameValueZero {
				t.Errorf("SameValueZero=%v, expected %v", got, tt.sameValueZero)
			}
		})
	}
}

func TestBigIntEquality(t *testing.T) {
	a := BigIntValue(big.NewInt(42))
	b := BigIntValue(big.NewInt(42))
	if !StrictEquals(a, b) {
		t.Errorf("equal BigInts compare unequal")
	}
	if StrictEquals(a, Number(42)) {
		t.Errorf("BigInt === Number should be false")
	}
}

func TestTypeOf(t *testing.T) {
	fn := NewObject(nil)
	fn.Callable = &FunctionData{Name: "f"}

	tests := []struct {
		v    Value
		want string
	}{
		{Undefined, "undefined"},
		{Null, "object"},
		{True, "boolean"},
		{Number(1), "number"},
		{BigIntValue(big.NewInt(1)), "bigint"},
		{String("s"), "string"},
		{SymbolValue(NewSymbol("s", true)), "symbol"},
		{Object_(NewObject(nil)), "object"},
		{Object_(fn), "function"},
	}
	for _, tt := range tests {
		if got := tt.v.TypeOf(); got != tt.want {
			t.Errorf("TypeOf(%v) = %q, expected %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Undefined, false},
		{Null, false},
		{False, false},
		{Number(0), false},
		{Number(math.NaN()), false},
		{String(""), false},
		{True, true},
		{Number(-1), true},
		{String("0"), true},
		{Object_(NewObject(nil)), true},
		{BigIntValue(big.NewInt(0)), false},
		{BigIntValue(big.NewInt(7)), true},
	}
	for _, tt := range tests {
		if got := tt.v.ToBoolean(); got != tt.want {
			t.Errorf("ToBoolean(%v %v) = %v, expected %v", tt.v.Kind(), tt.v, got, tt.want)
		}
	}
}

func TestArrayIndexKeys(t *testing.T) {
	table := atom.New()
	tests := []struct {
		key   string
		index uint32
		ok    bool
	}{
		{"0", 0, true},
		{"1", 1, true},
		{"42", 42, true},
		{"4294967294", 4294967294, true},
		{"4294967295", 0, false}, // 2^32-1 is not a valid array index
		{"01", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			k := StringKey(table.Intern(tt.key))
			idx, ok := k.ArrayIndex(table)
			if ok != tt.ok || idx != tt.index {
				t.Errorf("ArrayIndex(%q) = (%d, %v), expected (%d, %v)", tt.key, idx, ok, tt.index, tt.ok)
			}
		})
	}

	sym := SymbolKey(NewSymbol("s", true))
	if _, ok := sym.ArrayIndex(table); ok {
		t.Errorf("symbol keys are never array indices")
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1.5, "-1.5"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		if got := NumberToString(tt.n); got != tt.want {
			t.Errorf("NumberToString(%v) = %q, expected %q", tt.n, got, tt.want)
		}
	}
}

func TestNumberToStringRadix(t *testing.T) {
	tests := []struct {
		n     float64
		radix int
		want  string
	}{
		{255, 16, "ff"},
		{8, 2, "1000"},
		{-255, 16, "-ff"},
		{7, 8, "7"},
	}
	for _, tt := range tests {
		if got := NumberToStringRadix(tt.n, tt.radix); got != tt.want {
			t.Errorf("NumberToStringRadix(%v, %d) = %q, expected %q", tt.n, tt.radix, got, tt.want)
		}
	}
}
