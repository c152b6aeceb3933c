package value

import (
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/atom"
)

func defineXY(table *atom.Table) *Object {
	o := NewObject(nil)
	o.DefineOwnDataProperty(StringKey(table.Intern("x")), Number(1), true, true, true)
	o.DefineOwnDataProperty(StringKey(table.Intern("y")), Number(2), true, true, true)
	return o
}

func TestShapeSharing(t *testing.T) {
	table := atom.New()
	a := defineXY(table)
	b := defineXY(table)

	if a.shape != b.shape {
		t.Fatalf("objects built by the same property sequence do not share a shape")
	}

	// Lookups on the shared shape agree on slot offsets.
	_, offA, _ := a.shape.Find(StringKey(table.Intern("y")))
	_, offB, _ := b.shape.Find(StringKey(table.Intern("y")))
	if offA != offB {
		t.Fatalf("shared shape reports different offsets: %d vs %d", offA, offB)
	}
}

func TestShapeDivergence(t *testing.T) {
	table := atom.New()
	a := defineXY(table)
	b := defineXY(table)
	b.DefineOwnDataProperty(StringKey(table.Intern("z")), Number(3), true, true, true)

	if a.shape == b.shape {
		t.Fatalf("objects with different property sets share a shape")
	}
	// The diverged shape still chains off the shared prefix.
	if b.shape.Depth() != a.shape.Depth()+1 {
		t.Fatalf("diverged shape depth %d, expected %d", b.shape.Depth(), a.shape.Depth()+1)
	}
}

func TestShapeTransitionCached(t *testing.T) {
	entry := ShapeEntry{Key: PropertyKey{Atom: 100}, Writable: true, Enumerable: true, Configurable: true}
	c1 := RootShape.Transition(entry)
	c2 := RootShape.Transition(entry)
	if c1 != c2 {
		t.Fatalf("identical transitions produced distinct shapes")
	}
	differentFlags := ShapeEntry{Key: PropertyKey{Atom: 100}, Writable: false, Enumerable: true, Configurable: true}
	if RootShape.Transition(differentFlags) == c1 {
		t.Fatalf("transitions with different attribute flags share a shape")
	}
}

func TestOwnPropertyReadback(t *testing.T) {
	table := atom.New()
	o := NewObject(nil)
	key := StringKey(table.Intern("k"))
	o.DefineOwnDataProperty(key, String("v"), true, false, true)

	slot, ok := o.OwnProperty(key)
	if !ok {
		t.Fatalf("property not found after define")
	}
	if !StrictEquals(slot.Value, String("v")) {
		t.Errorf("value mismatch")
	}
	if slot.Enumerable {
		t.Errorf("enumerable flag lost")
	}
	if !slot.Writable || !slot.Configurable {
		t.Errorf("writable/configurable flags lost")
	}
}

func TestDeleteDemotesToDictionary(t *testing.T) {
	table := atom.New()
	o := defineXY(table)
	xKey := StringKey(table.Intern("x"))
	yKey := StringKey(table.Intern("y"))

	if !o.DeleteOwnProperty(xKey) {
		t.Fatalf("delete of a configurable property failed")
	}
	if _, ok := o.OwnProperty(xKey); ok {
		t.Fatalf("deleted property still present")
	}
	if slot, ok := o.OwnProperty(yKey); !ok || !StrictEquals(slot.Value, Number(2)) {
		t.Fatalf("sibling property lost by deletion")
	}
	if !o.inDictionaryMode() {
		t.Fatalf("deletion should demote the object to dictionary mode")
	}
}

func TestDeleteNonConfigurable(t *testing.T) {
	table := atom.New()
	o := NewObject(nil)
	key := StringKey(table.Intern("frozen"))
	o.DefineOwnDataProperty(key, Number(1), true, true, false)

	if o.DeleteOwnProperty(key) {
		t.Fatalf("delete of a non-configurable property should return false")
	}
	if _, ok := o.OwnProperty(key); !ok {
		t.Fatalf("non-configurable property vanished")
	}
}

func TestOwnKeysOrder(t *testing.T) {
	table := atom.New()
	o := NewObject(nil)
	o.DefineOwnDataProperty(StringKey(table.Intern("b")), Number(1), true, true, true)
	o.DefineOwnDataProperty(StringKey(table.Intern("2")), Number(2), true, true, true)
	o.DefineOwnDataProperty(StringKey(table.Intern("a")), Number(3), true, true, true)
	o.DefineOwnDataProperty(StringKey(table.Intern("1")), Number(4), true, true, true)
	sym := NewSymbol("s", true)
	o.DefineOwnDataProperty(SymbolKey(sym), Number(5), true, true, true)

	keys := o.OwnKeys(table)
	var spelled []string
	for _, k := range keys {
		if k.IsSymbol() {
			spelled = append(spelled, "@@"+k.Sym.Description)
			continue
		}
		s, _ := table.GetString(k.Atom)
		spelled = append(spelled, s)
	}
	want := []string{"1", "2", "b", "a", "@@s"}
	if len(spelled) != len(want) {
		t.Fatalf("key count %d, expected %d (%v)", len(spelled), len(want), spelled)
	}
	for i := range want {
		if spelled[i] != want[i] {
			t.Fatalf("key order %v, expected %v", spelled, want)
		}
	}
}

func TestPrototypeChainGet(t *testing.T) {
	table := atom.New()
	proto := NewObject(nil)
	key := StringKey(table.Intern("inherited"))
	proto.DefineOwnDataProperty(key, String("up"), true, true, true)
	o := NewObject(proto)

	slot, owner, ok := o.GetProperty(key)
	if !ok {
		t.Fatalf("inherited property not found")
	}
	if owner != proto {
		t.Fatalf("owner should be the prototype")
	}
	if !StrictEquals(slot.Value, String("up")) {
		t.Fatalf("inherited value mismatch")
	}
}
