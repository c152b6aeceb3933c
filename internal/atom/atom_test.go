package atom

import "testing"

func TestInternRoundTrip(t *testing.T) {
	table := New()
	inputs := []string{"foo", "bar", "", "日本語", "a b c", "null"}
	for _, s := range inputs {
		a := table.Intern(s)
		got, ok := table.GetString(a)
		if !ok {
			t.Fatalf("GetString(Intern(%q)) reported not found", s)
		}
		if got != s {
			t.Fatalf("round trip failed. expected=%q, got=%q", s, got)
		}
	}
}

func TestInternIdempotent(t *testing.T) {
	table := New()
	a1 := table.Intern("counter")
	a2 := table.Intern("counter")
	if a1 != a2 {
		t.Fatalf("Intern not idempotent: %d vs %d", a1, a2)
	}
}

func TestWellKnownSpellings(t *testing.T) {
	table := New()
	tests := []struct {
		atom Atom
		want string
	}{
		{Null, "null"},
		{Undefined, "undefined"},
		{Function, "function"},
		{Prototype, "prototype"},
		{Length, "length"},
		{Iterator, "Symbol.iterator"},
		{TypeError, "TypeError"},
	}
	for _, tt := range tests {
		got, ok := table.GetString(tt.atom)
		if !ok {
			t.Fatalf("well-known atom %d not found", tt.atom)
		}
		if got != tt.want {
			t.Errorf("atom %d spelled %q, expected %q", tt.atom, got, tt.want)
		}
	}
}

func TestWellKnownPreSeeded(t *testing.T) {
	table := New()
	if a := table.Intern("undefined"); a != Undefined {
		t.Fatalf("interning a well-known spelling returned a new atom %d, expected %d", a, Undefined)
	}
}

func TestInvalidAtom(t *testing.T) {
	table := New()
	if _, ok := table.GetString(Invalid); ok {
		t.Errorf("GetString(Invalid) should report not found")
	}
	if _, ok := table.GetString(Atom(1 << 20)); ok {
		t.Errorf("GetString of an out-of-range atom should report not found")
	}
}

func TestClearPreservesWellKnownPrefix(t *testing.T) {
	table := New()
	user := table.Intern("userVar")
	before := table.Len()
	table.Clear()

	if table.Len() >= before {
		t.Fatalf("Clear did not shrink the table: %d -> %d", before, table.Len())
	}
	if got, ok := table.GetString(Null); !ok || got != "null" {
		t.Fatalf("well-known atom lost after Clear: %q, %v", got, ok)
	}
	if _, ok := table.GetString(user); ok {
		t.Errorf("user atom survived Clear")
	}
	// Re-interning after Clear restarts the user range.
	again := table.Intern("userVar")
	if got, _ := table.GetString(again); got != "userVar" {
		t.Fatalf("re-interned atom resolves to %q", got)
	}
}

func TestUserAtomsGrowMonotonically(t *testing.T) {
	table := New()
	prev := table.Intern("a0")
	for _, s := range []string{"a1", "a2", "a3"} {
		a := table.Intern(s)
		if a <= prev {
			t.Fatalf("atom ids not monotonic: %d then %d", prev, a)
		}
		prev = a
	}
}
