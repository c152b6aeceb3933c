package vm

import (
	"math"
	"math/big"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// binaryOp implements the arithmetic/bitwise binary opcodes, including
// ECMAScript's string-concatenation override of `+` and the BigInt
// variants the parser's numeric-literal suffix can produce.
func (vm *VM) binaryOp(op bytecode.OpCode, lhs, rhs value.Value) (value.Value, error) {
	if op == bytecode.OpAdd {
		lp, err := vm.toPrimitive(lhs, "default")
		if err != nil {
			return value.Undefined, err
		}
		rp, err := vm.toPrimitive(rhs, "default")
		if err != nil {
			return value.Undefined, err
		}
		if lp.IsString() || rp.IsString() {
			ls, err := vm.toString(lp)
			if err != nil {
				return value.Undefined, err
			}
			rs, err := vm.toString(rp)
			if err != nil {
				return value.Undefined, err
			}
			return value.String(ls + rs), nil
		}
		if lp.IsBigInt() && rp.IsBigInt() {
			return vm.bigIntOp(op, lp, rp)
		}
		if lp.IsBigInt() || rp.IsBigInt() {
			return value.Undefined, vm.typeError("Cannot mix BigInt and other types, use explicit conversions")
		}
		return value.Number(vm.toNumber(lp) + vm.toNumber(rp)), nil
	}

	if lhs.IsBigInt() && rhs.IsBigInt() {
		return vm.bigIntOp(op, lhs, rhs)
	}
	if lhs.IsBigInt() || rhs.IsBigInt() {
		return value.Undefined, vm.typeError("Cannot mix BigInt and other types, use explicit conversions")
	}

	l, r := vm.toNumber(lhs), vm.toNumber(rhs)
	switch op {
	case bytecode.OpSub:
		return value.Number(l - r), nil
	case bytecode.OpMul:
		return value.Number(l * r), nil
	case bytecode.OpDiv:
		return value.Number(l / r), nil
	case bytecode.OpMod:
		return value.Number(math.Mod(l, r)), nil
	case bytecode.OpPow:
		return value.Number(math.Pow(l, r)), nil
	case bytecode.OpBitAnd:
		return value.Number(float64(toInt32(l) & toInt32(r))), nil
	case bytecode.OpBitOr:
		return value.Number(float64(toInt32(l) | toInt32(r))), nil
	case bytecode.OpBitXor:
		return value.Number(float64(toInt32(l) ^ toInt32(r))), nil
	case bytecode.OpShl:
		return value.Number(float64(toInt32(l) << (toUint32(r) & 31))), nil
	case bytecode.OpShr:
		return value.Number(float64(toInt32(l) >> (toUint32(r) & 31))), nil
	case bytecode.OpUShr:
		return value.Number(float64(toUint32(l) >> (toUint32(r) & 31))), nil
	}
	return value.Undefined, vm.runtimeErr(0, "unsupported binary opcode %s", op)
}

func (vm *VM) bigIntOp(op bytecode.OpCode, lhs, rhs value.Value) (value.Value, error) {
	l, r := lhs.BigInt(), rhs.BigInt()
	z := new(big.Int)
	switch op {
	case bytecode.OpAdd:
		return value.BigIntValue(z.Add(l, r)), nil
	case bytecode.OpSub:
		return value.BigIntValue(z.Sub(l, r)), nil
	case bytecode.OpMul:
		return value.BigIntValue(z.Mul(l, r)), nil
	case bytecode.OpDiv:
		if r.Sign() == 0 {
			return value.Undefined, vm.rangeError("Division by zero")
		}
		return value.BigIntValue(z.Quo(l, r)), nil
	case bytecode.OpMod:
		if r.Sign() == 0 {
			return value.Undefined, vm.rangeError("Division by zero")
		}
		return value.BigIntValue(z.Rem(l, r)), nil
	case bytecode.OpPow:
		if r.Sign() < 0 {
			return value.Undefined, vm.rangeError("Exponent must be non-negative")
		}
		return value.BigIntValue(z.Exp(l, r, nil)), nil
	case bytecode.OpBitAnd:
		return value.BigIntValue(z.And(l, r)), nil
	case bytecode.OpBitOr:
		return value.BigIntValue(z.Or(l, r)), nil
	case bytecode.OpBitXor:
		return value.BigIntValue(z.Xor(l, r)), nil
	case bytecode.OpShl:
		return value.BigIntValue(z.Lsh(l, uint(r.Int64()))), nil
	case bytecode.OpShr:
		return value.BigIntValue(z.Rsh(l, uint(r.Int64()))), nil
	}
	return value.Undefined, vm.typeError("unsupported BigInt operator")
}

func (vm *VM) numericNegate(v value.Value) value.Value {
	if v.IsBigInt() {
		return value.BigIntValue(new(big.Int).Neg(v.BigInt()))
	}
	return value.Number(-vm.toNumber(v))
}

// looseEquals implements the `==` Abstract Equality Comparison.
func (vm *VM) looseEquals(a, b value.Value) bool {
	if a.Kind() == b.Kind() {
		return value.StrictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	if a.IsNumber() && b.IsString() {
		return a.Float() == stringToNumber(b.Str())
	}
	if a.IsString() && b.IsNumber() {
		return stringToNumber(a.Str()) == b.Float()
	}
	if a.IsBigInt() && b.IsString() {
		bi, ok := new(big.Int).SetString(strings.TrimSpace(b.Str()), 10)
		return ok && a.BigInt().Cmp(bi) == 0
	}
	if a.IsString() && b.IsBigInt() {
		return vm.looseEquals(b, a)
	}
	if a.IsBoolean() {
		return vm.looseEquals(value.Number(vm.toNumber(a)), b)
	}
	if b.IsBoolean() {
		return vm.looseEquals(a, value.Number(vm.toNumber(b)))
	}
	if (a.IsNumber() || a.IsString() || a.IsBigInt() || a.IsSymbol()) && b.IsObject() {
		prim, err := vm.toPrimitive(b, "default")
		if err != nil {
			return false
		}
		return vm.looseEquals(a, prim)
	}
	if a.IsObject() && (b.IsNumber() || b.IsString() || b.IsBigInt() || b.IsSymbol()) {
		return vm.looseEquals(b, a)
	}
	if a.IsBigInt() && b.IsNumber() {
		if math.IsNaN(b.Float()) || math.IsInf(b.Float(), 0) {
			return false
		}
		bi, acc := new(big.Float).SetFloat64(b.Float()).Int(nil)
		return acc == big.Exact && a.BigInt().Cmp(bi) == 0
	}
	if a.IsNumber() && b.IsBigInt() {
		return vm.looseEquals(b, a)
	}
	return false
}

// relationalCompare implements `<`,`<=`,`>`,`>=` via the Abstract
// Relational Comparison, reporting ok=false when either side produced
// NaN (the comparison is then always false, per spec).
func (vm *VM) relationalCompare(op bytecode.OpCode, lhs, rhs value.Value) (bool, bool) {
	lp, _ := vm.toPrimitive(lhs, "number")
	rp, _ := vm.toPrimitive(rhs, "number")
	if lp.IsString() && rp.IsString() {
		c := strings.Compare(lp.Str(), rp.Str())
		return compareResult(op, c), true
	}
	if lp.IsBigInt() && rp.IsBigInt() {
		c := lp.BigInt().Cmp(rp.BigInt())
		return compareResult(op, c), true
	}
	l, r := vm.toNumber(lp), vm.toNumber(rp)
	if math.IsNaN(l) || math.IsNaN(r) {
		return false, false
	}
	switch op {
	case bytecode.OpLt:
		return l < r, true
	case bytecode.OpLe:
		return l <= r, true
	case bytecode.OpGt:
		return l > r, true
	case bytecode.OpGe:
		return l >= r, true
	}
	return false, false
}

func compareResult(op bytecode.OpCode, c int) bool {
	switch op {
	case bytecode.OpLt:
		return c < 0
	case bytecode.OpLe:
		return c <= 0
	case bytecode.OpGt:
		return c > 0
	case bytecode.OpGe:
		return c >= 0
	}
	return false
}

// instanceOf implements `instanceof`: rhs must be a callable with a
// `.prototype` object appearing somewhere on lhs's prototype chain.
func (vm *VM) instanceOf(lhs, rhs value.Value) (bool, error) {
	if !rhs.IsObject() || rhs.Obj().Callable == nil {
		return false, vm.typeError("Right-hand side of 'instanceof' is not callable")
	}
	protoSlot, _, ok := rhs.Obj().GetProperty(value.StringKey(atom.Prototype))
	if !ok || !protoSlot.Value.IsObject() {
		return false, vm.typeError("Function has non-object prototype in instanceof check")
	}
	if !lhs.IsObject() {
		return false, nil
	}
	target := protoSlot.Value.Obj()
	for cur := lhs.Obj().Proto; cur != nil; cur = cur.Proto {
		if cur == target {
			return true, nil
		}
	}
	return false, nil
}

// hasProperty implements the `in` operator.
func (vm *VM) hasProperty(rhs, lhs value.Value) (bool, error) {
	if !rhs.IsObject() {
		return false, vm.typeError("Cannot use 'in' operator on a non-object")
	}
	key, err := vm.toPropertyKey(lhs)
	if err != nil {
		return false, err
	}
	if idx, ok := key.ArrayIndex(vm.Atoms); ok {
		if _, ok := rhs.Obj().GetElement(idx); ok {
			return true, nil
		}
	}
	_, _, ok := rhs.Obj().GetProperty(key)
	return ok, nil
}

func (vm *VM) toPropertyKey(v value.Value) (value.PropertyKey, error) {
	if v.IsSymbol() {
		return value.SymbolKey(v.Sym()), nil
	}
	s, err := vm.toString(v)
	if err != nil {
		return value.PropertyKey{}, err
	}
	return value.StringKey(vm.Atoms.Intern(s)), nil
}
