package ecmascript

import (
	"fmt"
	"strings"
	"testing"
)

func evalNumber(t *testing.T, eng *Engine, src string) float64 {
	t.Helper()
	v, err := eng.Eval(src, "test.js", false)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	f, ok := v.Float64()
	if !ok {
		t.Fatalf("eval %q: expected a number, got %s", src, v.TypeOf())
	}
	return f
}

func TestEvalArithmetic(t *testing.T) {
	eng := New()
	if got := evalNumber(t, eng, "2 + 2"); got != 4 {
		t.Fatalf("2 + 2 = %v, expected 4", got)
	}
	if got := evalNumber(t, eng, "2 ** 10"); got != 1024 {
		t.Fatalf("2 ** 10 = %v, expected 1024", got)
	}
	if got := evalNumber(t, eng, "(1 + 2) * 3 - 4 / 2"); got != 7 {
		t.Fatalf("got %v, expected 7", got)
	}
}

func TestEvalStringsAndTemplates(t *testing.T) {
	eng := New()
	v, err := eng.Eval("`a ${1 + 1} c`", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "a 2 c" {
		t.Fatalf("template result %q, expected %q", v.String(), "a 2 c")
	}
}

func TestEvalClosuresAndHoisting(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
function counter() {
	let n = 0;
	return function() { return ++n; };
}
const c = counter();
c(); c(); c()
`)
	if got != 3 {
		t.Fatalf("closure counter = %v, expected 3", got)
	}
}

func TestEvalClassWithPrivateField(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
class Counter { #c = 0; inc() { return ++this.#c; } }
const x = new Counter();
x.inc();
x.inc()
`)
	if got != 2 {
		t.Fatalf("private counter = %v, expected 2", got)
	}

	// Reading a private name outside any class is a syntax error.
	if _, err := eng.Eval("x.#c", "test.js", false); err == nil {
		t.Fatalf("private access outside a class should fail to parse")
	}
}

func TestEvalClassInheritance(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
class Base {
	constructor(v) { this.v = v; }
	get() { return this.v; }
}
class Twice extends Base {
	constructor(v) { super(v * 2); }
}
new Twice(21).get()
`)
	if got != 42 {
		t.Fatalf("derived class result %v, expected 42", got)
	}
}

func TestEvalDuplicateLetFails(t *testing.T) {
	eng := New()
	if _, err := eng.Eval("let x; x; let x;", "test.js", false); err == nil {
		t.Fatalf("duplicate let declaration should be rejected")
	}
}

func TestEvalTDZ(t *testing.T) {
	eng := New()
	_, err := eng.Eval("tdzVal; let tdzVal = 1;", "test.js", false)
	if err == nil {
		t.Fatalf("read before initialization should throw")
	}
	if !strings.Contains(err.Error(), "initialization") {
		t.Fatalf("expected a TDZ ReferenceError, got: %v", err)
	}
}

func TestEvalStrictUndeclaredAssignment(t *testing.T) {
	eng := New()
	if _, err := eng.Eval("'use strict'; foo = 1;", "strict.js", false); err == nil {
		t.Fatalf("strict assignment to an undeclared identifier should throw")
	}

	// Sloppy code creates a global instead.
	if _, err := eng.Eval("bar = 7;", "sloppy.js", false); err != nil {
		t.Fatalf("sloppy undeclared assignment failed: %v", err)
	}
	if got := evalNumber(t, eng, "bar"); got != 7 {
		t.Fatalf("global created by sloppy assignment reads back %v", got)
	}
}

func TestEvalTryCatchFinally(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
steps = 0;
try {
	steps = steps + 1;
	throw new Error("boom");
} catch (e) {
	steps = steps + 10;
} finally {
	steps = steps + 100;
}
steps
`)
	if got != 111 {
		t.Fatalf("try/catch/finally steps = %v, expected 111", got)
	}
}

func TestEvalUncaughtBecomesPendingException(t *testing.T) {
	eng := New()
	_, err := eng.Eval(`throw new TypeError("nope");`, "test.js", false)
	if err == nil {
		t.Fatalf("uncaught throw should surface as an error")
	}
	if !eng.HasPendingException() {
		t.Fatalf("pending exception not recorded")
	}
	eng.ClearPendingException()
	if eng.HasPendingException() {
		t.Fatalf("pending exception not cleared")
	}
}

func TestEvalGeneratorCloseOnBreak(t *testing.T) {
	eng := New()
	v, err := eng.Eval(`
closed = false;
function* g() { try { yield 1; yield 2; } finally { closed = true; } }
for (const x of g()) break;
closed
`, "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsBoolean() || !v.ToBoolean() {
		t.Fatalf("breaking out of for-of did not close the generator (closed=%s)", v.String())
	}
}

func TestEvalGeneratorProtocol(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
function* g() { yield 1; yield 2; yield 3; }
sum = 0;
for (const x of g()) sum = sum + x;
sum
`)
	if got != 6 {
		t.Fatalf("generator sum = %v, expected 6", got)
	}
}

func TestEvalPromiseThen(t *testing.T) {
	eng := New()
	if _, err := eng.Eval(`
r = 0;
Promise.resolve(10).then(v => { r = v * 4; });
`, "test.js", false); err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	if got := evalNumber(t, eng, "r"); got != 40 {
		t.Fatalf("then handler result %v, expected 40", got)
	}
}

func TestEvalMicrotaskOrdering(t *testing.T) {
	eng := New()
	v, err := eng.Eval(`
order = "";
Promise.resolve().then(() => { order = order + "a"; }).then(() => { order = order + "b"; });
Promise.resolve().then(() => { order = order + "c"; });
`, "test.js", false)
	_ = v
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	got, err := eng.Eval("order", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	// a and c are enqueued by the first resolution pass; b only runs
	// after a's derived promise settles.
	if got.String() != "acb" {
		t.Fatalf("microtask order %q, expected %q", got.String(), "acb")
	}
}

func TestEvalAsyncAwait(t *testing.T) {
	eng := New()
	if _, err := eng.Eval(`
result = 0;
async function f() {
	const v = await Promise.resolve(5);
	result = v + 1;
}
f();
`, "test.js", false); err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	if got := evalNumber(t, eng, "result"); got != 6 {
		t.Fatalf("async/await result %v, expected 6", got)
	}
}

func TestEvalAsyncRejectionPropagates(t *testing.T) {
	eng := New()
	if _, err := eng.Eval(`
caught = "";
async function f() {
	try {
		await Promise.reject(new Error("denied"));
	} catch (e) {
		caught = e.message;
	}
}
f();
`, "test.js", false); err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	got, err := eng.Eval("caught", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got.String() != "denied" {
		t.Fatalf("await rejection caught %q, expected %q", got.String(), "denied")
	}
}

func TestEvalUnhandledRejectionCallback(t *testing.T) {
	var reasons []string
	eng := New(WithPromiseRejectionCallback(func(reason Value, handled bool) {
		if !handled {
			reasons = append(reasons, reason.String())
		}
	}))
	if _, err := eng.Eval(`Promise.reject("lost");`, "test.js", false); err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	if len(reasons) != 1 || reasons[0] != "lost" {
		t.Fatalf("unhandled rejection reasons %v, expected [lost]", reasons)
	}
}

func TestUnhandledRejectionsAccumulate(t *testing.T) {
	eng := New()
	if _, err := eng.Eval(`Promise.reject("dropped");`, "test.js", false); err != nil {
		t.Fatalf("eval: %v", err)
	}
	eng.ProcessMicrotasks()
	reasons := eng.UnhandledRejections()
	if len(reasons) != 1 || reasons[0].String() != "dropped" {
		t.Fatalf("accumulated rejections %v", reasons)
	}
}

func TestEvalDestructuring(t *testing.T) {
	eng := New()
	got := evalNumber(t, eng, `
const [a, , b = 10, ...rest] = [1, 2, undefined, 4, 5];
const { x, y: z = 100 } = { x: 1000 };
a + b + rest[0] + rest[1] + x + z
`)
	if got != 1+10+4+5+1000+100 {
		t.Fatalf("destructuring sum = %v, expected %v", got, 1+10+4+5+1000+100)
	}
}

func TestEvalOptionalChaining(t *testing.T) {
	eng := New()
	v, err := eng.Eval(`
obj = { a: { b: 1 } };
"" + obj?.a?.b + "/" + obj?.missing?.deep
`, "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "1/undefined" {
		t.Fatalf("optional chain result %q", v.String())
	}
}

func TestEvalTypeofAndEquality(t *testing.T) {
	eng := New()
	v, err := eng.Eval(`typeof undefined + "," + typeof null + "," + typeof 1 + "," + typeof "s" + "," + typeof (() => 1)`, "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "undefined,object,number,string,function" {
		t.Fatalf("typeof chain %q", v.String())
	}

	b, err := eng.Eval("1 == '1' && 1 !== '1' && NaN !== NaN && null == undefined", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !b.ToBoolean() {
		t.Fatalf("equality matrix did not hold")
	}
}

func TestEvalModuleGraph(t *testing.T) {
	sources := map[string]string{
		"math": `
export const double = x => x * 2;
export default 21;
`,
		"main": `
import base, { double } from "math";
export const answer = double(base);
answer
`,
	}
	eng := New(WithModuleLoader(
		func(referrer, specifier string) string { return specifier },
		func(key string) (string, error) {
			src, ok := sources[key]
			if !ok {
				return "", fmt.Errorf("unknown module %q", key)
			}
			return src, nil
		},
	))

	v, err := eng.Eval(sources["main"], "main", true)
	if err != nil {
		t.Fatalf("module eval: %v", err)
	}
	f, ok := v.Float64()
	if !ok || f != 42 {
		t.Fatalf("module completion = %s, expected 42", v.String())
	}
}

func TestEvalModuleMissingExport(t *testing.T) {
	eng := New(WithModuleLoader(
		func(referrer, specifier string) string { return specifier },
		func(key string) (string, error) { return `export const a = 1;`, nil },
	))
	_, err := eng.Eval(`import { nope } from "dep";`, "main", true)
	if err == nil {
		t.Fatalf("importing a missing export should fail to link")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("link error does not name the binding: %v", err)
	}
}

func TestEvalModuleWithoutLoader(t *testing.T) {
	eng := New()
	if _, err := eng.Eval(`import { a } from "dep";`, "main", true); err == nil {
		t.Fatalf("importing without a loader should fail")
	}
	// A module with no imports still evaluates.
	v, err := eng.Eval("export const x = 1; x", "standalone", true)
	if err != nil {
		t.Fatalf("loader-free module eval: %v", err)
	}
	if f, _ := v.Float64(); f != 1 {
		t.Fatalf("module completion %s, expected 1", v.String())
	}
}

func TestRuntimeHostsMultipleContexts(t *testing.T) {
	rt := NewRuntime()
	c1 := rt.CreateContext()
	c2 := rt.CreateContext()

	if _, err := c1.Eval("shared = 1;", "a.js", false); err != nil {
		t.Fatalf("c1 eval: %v", err)
	}
	// Globals are per context; the atom table is shared.
	if _, err := c2.Eval("shared", "b.js", false); err == nil {
		t.Fatalf("contexts should not share globals")
	}
}

func TestWithStrictOption(t *testing.T) {
	eng := New(WithStrict(true))
	if _, err := eng.Eval("implicitGlobal = 1;", "test.js", false); err == nil {
		t.Fatalf("WithStrict should make undeclared assignment throw")
	}
}

func TestValueAccessors(t *testing.T) {
	eng := New()
	v, err := eng.Eval("true", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsBoolean() || !v.ToBoolean() {
		t.Fatalf("boolean completion misreported")
	}

	u, err := eng.Eval("undefined", "test.js", false)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !u.IsUndefined() {
		t.Fatalf("undefined completion misreported: %s", u.TypeOf())
	}
}
