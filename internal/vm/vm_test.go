package vm

import (
	"math"
	"strings"
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/parser"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

func run(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	atoms := atom.New()
	prog, errs := parser.ParseScript(src, "test.js", atoms)
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	chunk, err := bytecode.Compile(prog, atoms)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return NewVM(atoms).RunProgram(chunk)
}

func runValue(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return v
}

func TestRunCompletionValues(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{"2 + 2", value.Number(4)},
		{"'a' + 'b'", value.String("ab")},
		{"1 === 1.0", value.True},
		{"null == undefined", value.True},
		{"null === undefined", value.False},
		{"typeof 1n", value.String("bigint")},
		{"1; 2; 3", value.Number(3)},
		{"var x = 9;", value.Undefined},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := runValue(t, tt.src)
			if !value.SameValue(got, tt.want) {
				t.Fatalf("completion = %v %v, expected %v %v", got.Kind(), got, tt.want.Kind(), tt.want)
			}
		})
	}
}

func TestRunNumberCoercion(t *testing.T) {
	v := runValue(t, "'3' * '4'")
	if v.Float() != 12 {
		t.Fatalf("string multiplication = %v, expected 12", v.Float())
	}
	v = runValue(t, "0/0")
	if !math.IsNaN(v.Float()) {
		t.Fatalf("0/0 should be NaN")
	}
	v = runValue(t, "1/0")
	if !math.IsInf(v.Float(), 1) {
		t.Fatalf("1/0 should be Infinity")
	}
}

func TestRunBigIntArithmetic(t *testing.T) {
	v := runValue(t, "(1n << 64n) + 1n")
	if !v.IsBigInt() {
		t.Fatalf("expected a BigInt result, got %v", v.Kind())
	}
	if v.BigInt().String() != "18446744073709551617" {
		t.Fatalf("BigInt result %s", v.BigInt())
	}

	if _, err := run(t, "1n + 1"); err == nil {
		t.Fatalf("mixing BigInt and Number should throw")
	}
}

func TestRunThrowUnwindsToHandler(t *testing.T) {
	v := runValue(t, `
r = "";
try {
	try {
		throw new RangeError("inner");
	} finally {
		r = r + "f1";
	}
} catch (e) {
	r = r + "c";
}
r
`)
	if v.Str() != "f1c" {
		t.Fatalf("unwind order %q, expected %q", v.Str(), "f1c")
	}
}

func TestRunUncaughtThrowCarriesValue(t *testing.T) {
	_, err := run(t, `throw new TypeError("kaput");`)
	if err == nil {
		t.Fatalf("expected an error")
	}
	thrown, ok := ThrownValue(err)
	if !ok {
		t.Fatalf("uncaught error does not carry a JS value: %v", err)
	}
	if !thrown.IsObject() {
		t.Fatalf("thrown value should be the Error object")
	}
	if !strings.Contains(err.Error(), "kaput") {
		t.Fatalf("error text %q does not include the message", err.Error())
	}
}

func TestRunCallNonCallable(t *testing.T) {
	_, err := run(t, "x = 1; x();")
	if err == nil {
		t.Fatalf("calling a number should throw a TypeError")
	}
	if !strings.Contains(err.Error(), "not a function") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRunPropertyOfNullish(t *testing.T) {
	if _, err := run(t, "null.x"); err == nil {
		t.Fatalf("property access on null should throw")
	}
	if _, err := run(t, "undefined.x"); err == nil {
		t.Fatalf("property access on undefined should throw")
	}
}

func TestRunStringAutoBoxing(t *testing.T) {
	v := runValue(t, `"hello".length`)
	if v.Float() != 5 {
		t.Fatalf(`"hello".length = %v, expected 5`, v.Float())
	}
}

func TestRunArrayElements(t *testing.T) {
	v := runValue(t, "a = [10, 20, 30]; a[0] + a[2] + a.length")
	if v.Float() != 43 {
		t.Fatalf("array arithmetic = %v, expected 43", v.Float())
	}
}

func TestRunClosureCellSharing(t *testing.T) {
	v := runValue(t, `
function pair() {
	let n = 0;
	return [function() { n = n + 1; }, function() { return n; }];
}
p = pair();
p[0](); p[0]();
p[1]()
`)
	if v.Float() != 2 {
		t.Fatalf("shared cell value %v, expected 2", v.Float())
	}
}

func TestRunModuleLinkage(t *testing.T) {
	atoms := atom.New()
	machine := NewVM(atoms)

	depProg, errs := parser.ParseModule(`export const seven = 7;`, "dep", atoms)
	if len(errs) > 0 {
		t.Fatalf("parse dep: %v", errs)
	}
	depChunk, err := bytecode.Compile(depProg, atoms)
	if err != nil {
		t.Fatalf("compile dep: %v", err)
	}
	depExports := value.NewObject(nil)
	if _, err := machine.RunModule(depChunk, &ModuleLinkage{Exports: depExports}); err != nil {
		t.Fatalf("run dep: %v", err)
	}
	slot, ok := depExports.OwnProperty(value.StringKey(atoms.Intern("seven")))
	if !ok || slot.Value.Float() != 7 {
		t.Fatalf("dep export not published: %+v, %v", slot, ok)
	}

	mainProg, errs := parser.ParseModule(`import { seven } from "dep"; seven * 6`, "main", atoms)
	if len(errs) > 0 {
		t.Fatalf("parse main: %v", errs)
	}
	mainChunk, err := bytecode.Compile(mainProg, atoms)
	if err != nil {
		t.Fatalf("compile main: %v", err)
	}
	link := &ModuleLinkage{
		Exports: value.NewObject(nil),
		Resolve: func(request string) (*value.Object, error) { return depExports, nil },
	}
	v, err := machine.RunModule(mainChunk, link)
	if err != nil {
		t.Fatalf("run main: %v", err)
	}
	if v.Float() != 42 {
		t.Fatalf("module completion %v, expected 42", v.Float())
	}
}

func TestRunImportOutsideModuleContext(t *testing.T) {
	atoms := atom.New()
	prog, errs := parser.ParseModule(`import { x } from "dep"; x`, "main", atoms)
	if len(errs) > 0 {
		t.Fatalf("parse: %v", errs)
	}
	chunk, err := bytecode.Compile(prog, atoms)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := NewVM(atoms).RunProgram(chunk); err == nil {
		t.Fatalf("module bindings without a linkage should fail")
	}
}
