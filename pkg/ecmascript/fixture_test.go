package ecmascript

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestScriptFixtures runs a set of small programs through the whole
// pipeline and snapshots their observable outcome (completion value or
// error text), using go-snaps so regressions in any stage — lexer
// through VM — show up as a readable diff.
func TestScriptFixtures(t *testing.T) {
	fixtures := []struct {
		name string
		src  string
	}{
		{"arithmetic", "1 + 2 * 3 - 4 % 3"},
		{"string concat", `"a" + 1 + true + null + undefined`},
		{"ternary", "1 < 2 ? 'yes' : 'no'"},
		{"logical operators", `"" || 0 || "first-truthy"`},
		{"nullish", `null ?? undefined ?? "fallback"`},
		{"bitwise", "(0xF0 | 0x0F) ^ 0xFF"},
		{"shift", "1 << 10"},
		{"comparison chain", "(1 < 2) + (2 <= 2) + (3 > 4)"},
		{"void", "void 42"},
		{"comma operator", "(1, 2, 3)"},
		{"iife", "(function (n) { return n * n; })(9)"},
		{"arrow concise body", "((a, b) => a + b)(40, 2)"},
		{"default parameters", "((a, b = a * 2) => a + b)(5)"},
		{"rest parameters", "((...xs) => xs.length)(1, 2, 3)"},
		{"var hoisting", "function f() { return v; var v; } '' + f()"},
		{"switch fallthrough", `
out = "";
switch (2) { case 1: out = out + "1"; case 2: out = out + "2"; case 3: out = out + "3"; break; default: out = out + "d"; }
out`},
		{"labeled break", `
n = 0;
outer: for (let i = 0; i < 3; i++) { for (let j = 0; j < 3; j++) { if (j == 1) continue outer; n = n + 1; } }
n`},
		{"while loop", "i = 0; total = 0; while (i < 5) { total = total + i; i = i + 1; } total"},
		{"object literals", `({ a: 1, ["b" + 2]: 3, c() { return 4; } }).b2`},
		{"array spread", "[0, ...[1, 2], 3].length"},
		{"object spread", "({ ...{ a: 1 }, b: 2 }).a"},
		{"for-in keys", `
ks = "";
for (const k in { x: 1, y: 2 }) ks = ks + k;
ks`},
		{"class static", "class C { static twice(n) { return n * 2; } } C.twice(21)"},
		{"class getter", "class P { constructor(v) { this._v = v; } get v() { return this._v; } } new P(7).v"},
		{"instanceof", "class A {} new A() instanceof A"},
		{"try finally order", `
trace = "";
function f() { try { trace = trace + "t"; return "r"; } finally { trace = trace + "f"; } }
f() + ":" + trace`},
		{"throw non-error", "try { throw 42; } catch (e) { typeof e; }"},
		{"tagged template", "((parts, a) => a * 2)`ignored ${21}`"},
		{"typeof missing global", "typeof neverDeclared"},
		{"delete property", "obj = { gone: 1 }; delete obj.gone; '' + obj.gone"},
		{"in operator", "'x' in { x: 1 }"},
		{"generator spread order", `
function* g() { yield 'a'; yield 'b'; }
s = '';
for (const v of g()) s = s + v;
s`},
		{"syntax error unterminated", "function ("},
		{"reference error", "'use strict'; missing = 1;"},
	}

	eng := New()
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			v, err := eng.Eval(fx.src, fx.name+".js", false)
			if err != nil {
				snaps.MatchSnapshot(t, fmt.Sprintf("error: %v", err))
				return
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s: %s", v.TypeOf(), v.String()))
		})
	}
}
