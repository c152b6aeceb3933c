package module

import (
	"strings"
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/parser"
)

func mustParse(t *testing.T, specifier, src string) *Record {
	t.Helper()
	prog, errs := parser.ParseModule(src, specifier, atom.New())
	if len(errs) > 0 {
		t.Fatalf("parse %s: %v", specifier, errs)
	}
	return FromProgram(specifier, prog)
}

func TestFromProgramEntries(t *testing.T) {
	r := mustParse(t, "main.mjs", `
import d from "dep";
import * as ns from "dep";
import { a, b as c } from "dep";
export const x = 1;
export { x as y };
export default 42;
export * from "other";
`)

	wantImports := []ImportEntry{
		{ModuleRequest: "dep", ImportName: "default", LocalName: "d"},
		{ModuleRequest: "dep", ImportName: "*", LocalName: "ns"},
		{ModuleRequest: "dep", ImportName: "a", LocalName: "a"},
		{ModuleRequest: "dep", ImportName: "b", LocalName: "c"},
		{ModuleRequest: "other"},
	}
	if len(r.Imports) != len(wantImports) {
		t.Fatalf("import count %d, expected %d (%+v)", len(r.Imports), len(wantImports), r.Imports)
	}
	for i, want := range wantImports {
		if r.Imports[i] != want {
			t.Errorf("import[%d] = %+v, expected %+v", i, r.Imports[i], want)
		}
	}

	var exportNames []string
	for _, e := range r.Exports {
		exportNames = append(exportNames, e.ExportName)
	}
	joined := strings.Join(exportNames, ",")
	for _, want := range []string{"x", "y", "default"} {
		if !strings.Contains(joined, want) {
			t.Errorf("export %q missing from %v", want, exportNames)
		}
	}
}

func TestLinkResolvesGraph(t *testing.T) {
	loader := NewLoader()
	dep := mustParse(t, "dep", `export const a = 1;`)
	loader.Register(dep)
	main := mustParse(t, "main", `import { a } from "dep"; a;`)
	loader.Register(main)

	if err := loader.Link(main); err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if main.Status != Linked {
		t.Fatalf("main status %v, expected linked", main.Status)
	}
	if dep.Status != Linked {
		t.Fatalf("dep status %v, expected linked", dep.Status)
	}
}

func TestLinkMissingExport(t *testing.T) {
	loader := NewLoader()
	dep := mustParse(t, "dep", `export const a = 1;`)
	loader.Register(dep)
	main := mustParse(t, "main", `import { nope } from "dep";`)
	loader.Register(main)

	err := loader.Link(main)
	if err == nil {
		t.Fatalf("Link should fail for a missing export")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Fatalf("error does not name the missing export: %v", err)
	}
}

func TestLinkUnresolvedModule(t *testing.T) {
	loader := NewLoader()
	main := mustParse(t, "main", `import { a } from "ghost";`)
	loader.Register(main)

	if err := loader.Link(main); err == nil {
		t.Fatalf("Link should fail when a request cannot be resolved")
	}
}

func TestLinkResolveCallback(t *testing.T) {
	loader := NewLoader()
	main := mustParse(t, "main", `import { a } from "lazy";`)
	main.Resolve = func(specifier string) (*Record, error) {
		return mustParse(t, specifier, `export const a = 1;`), nil
	}
	loader.Register(main)

	if err := loader.Link(main); err != nil {
		t.Fatalf("Link with resolve callback failed: %v", err)
	}
	if _, ok := loader.Get("lazy"); !ok {
		t.Fatalf("resolved dependency was not cached")
	}
}

func TestLinkCycleIsLegal(t *testing.T) {
	loader := NewLoader()
	a := mustParse(t, "a", `import { b } from "b"; export const a = 1;`)
	b := mustParse(t, "b", `import { a } from "a"; export const b = 2;`)
	loader.Register(a)
	loader.Register(b)

	if err := loader.Link(a); err != nil {
		t.Fatalf("cyclic graph should link: %v", err)
	}
	if a.Status != Linked || b.Status != Linked {
		t.Fatalf("cycle members not linked: %v / %v", a.Status, b.Status)
	}
}

func TestEvaluationOrderDependenciesFirst(t *testing.T) {
	loader := NewLoader()
	leaf := mustParse(t, "leaf", `export const l = 1;`)
	mid := mustParse(t, "mid", `import { l } from "leaf"; export const m = l + 1;`)
	main := mustParse(t, "main", `import { m } from "mid"; m;`)
	loader.Register(leaf)
	loader.Register(mid)
	loader.Register(main)

	if err := loader.Link(main); err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	order := loader.EvaluationOrder(main)
	if len(order) != 3 {
		t.Fatalf("order has %d entries, expected 3", len(order))
	}
	if order[0] != leaf || order[1] != mid || order[2] != main {
		var names []string
		for _, r := range order {
			names = append(names, r.Specifier)
		}
		t.Fatalf("evaluation order %v, expected [leaf mid main]", names)
	}
}

func TestReexportSatisfiesImport(t *testing.T) {
	loader := NewLoader()
	base := mustParse(t, "base", `export const core = 1;`)
	hub := mustParse(t, "hub", `export { core } from "base";`)
	main := mustParse(t, "main", `import { core } from "hub";`)
	loader.Register(base)
	loader.Register(hub)
	loader.Register(main)

	if err := loader.Link(main); err != nil {
		t.Fatalf("re-export chain should link: %v", err)
	}
}
