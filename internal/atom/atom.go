// Package atom implements the runtime's string-intern table. Every
// identifier, property key, and well-known name the engine touches is
// interned here once; afterwards it is referenced by a small integer
// handle instead of by string comparison.
package atom

import "sync"

// Atom is an interned-string handle. Atom 0 is never a valid interned
// value; index 0 is a reserved sentinel.
type Atom uint32

const Invalid Atom = 0

// Well-known atoms are pre-seeded at Table construction so VM opcodes
// that reference them (e.g. Symbol.iterator lookups) never pay an
// interning cost and never collide with a user identifier.
const (
	Empty Atom = iota + 1
	Null
	Undefined
	True
	False
	NaN
	Infinity
	Function
	Length
	Name
	Message
	Prototype
	Constructor
	ToString
	ValueOf
	Arguments
	This
	Iterator
	AsyncIterator
	Done
	Value
	Next
	Return
	Throw
	Default
	Star // '*'
	Get
	Set
	Object
	Array
	Error
	TypeError
	RangeError
	ReferenceError
	SyntaxError
	EvalError
	URIError
	Promise
	Symbol
	BigInt
	Number
	Boolean
	String

	firstUserAtom
)

var wellKnownSpellings = map[Atom]string{
	Empty: "", Null: "null", Undefined: "undefined", True: "true", False: "false",
	NaN: "NaN", Infinity: "Infinity", Function: "function", Length: "length",
	Name: "name", Message: "message", Prototype: "prototype", Constructor: "constructor",
	ToString: "toString", ValueOf: "valueOf", Arguments: "arguments", This: "this",
	Iterator: "Symbol.iterator", AsyncIterator: "Symbol.asyncIterator", Done: "done",
	Value: "value", Next: "next", Return: "return", Throw: "throw", Default: "default",
	Star: "*", Get: "get", Set: "set", Object: "Object", Array: "Array", Error: "Error",
	TypeError: "TypeError", RangeError: "RangeError", ReferenceError: "ReferenceError",
	SyntaxError: "SyntaxError", EvalError: "EvalError", URIError: "URIError",
	Promise: "Promise", Symbol: "Symbol", BigInt: "BigInt", Number: "Number", Boolean: "Boolean",
	String: "String",
}

// Table is the runtime-lifetime append-only string interner. A
// Runtime owns exactly one Table and threads it explicitly through
// every lexer/parser/compiler/VM component that needs to resolve
// identifiers — there is no package-level singleton.
type Table struct {
	mu      sync.RWMutex
	strings []string
	ids     map[string]Atom
}

// New creates a Table pre-populated with the well-known atoms.
func New() *Table {
	t := &Table{
		strings: make([]string, firstUserAtom),
		ids:     make(map[string]Atom, firstUserAtom*2),
	}
	for a, s := range wellKnownSpellings {
		t.strings[a] = s
		t.ids[s] = a
	}
	return t
}

// Intern returns the Atom for s, creating one if s has not been seen
// before. Intern is idempotent: repeated calls with the same string
// return the same Atom.
func (t *Table) Intern(s string) Atom {
	t.mu.RLock()
	if a, ok := t.ids[s]; ok {
		t.mu.RUnlock()
		return a
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.ids[s]; ok {
		return a
	}
	a := Atom(len(t.strings))
	t.strings = append(t.strings, s)
	t.ids[s] = a
	return a
}

// GetString resolves an Atom back to its string. It returns "", false
// for an atom that was never interned in this table (including
// Invalid).
func (t *Table) GetString(a Atom) (string, bool) {
	if a == Invalid {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a) >= len(t.strings) {
		return "", false
	}
	return t.strings[a], true
}

// MustGetString panics if a is not a valid atom in this table; it is
// for call sites that only ever pass atoms this table itself produced.
func (t *Table) MustGetString(a Atom) string {
	s, ok := t.GetString(a)
	if !ok {
		panic("atom: invalid atom handle")
	}
	return s
}

// Clear resets the table to just its pre-seeded well-known prefix,
// discarding every user-interned atom. Existing Atom handles into the
// discarded range become invalid; callers must not retain atoms across
// a Clear.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strings = t.strings[:firstUserAtom]
	for s := range t.ids {
		if a := t.ids[s]; a >= firstUserAtom {
			delete(t.ids, s)
		}
	}
}

// Len returns the number of interned atoms, including well-known ones.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strings)
}
