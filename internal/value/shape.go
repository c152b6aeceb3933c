package value

// Shape is a hidden class: an ordered, immutable description of the
// named (non-element) data/accessor properties an object carries,
// shared structurally across every object that has added the same
// properties in the same order.
// Objects transition from shape to shape as properties are added;
// a shape never mutates once other objects may be sharing it.
type Shape struct {
	parent     *Shape
	entry      ShapeEntry // the property this shape adds over parent; zero for the root
	depth      int        // number of entries including this one (0 for root)
	transitions map[transitionKey]*Shape
}

// ShapeEntry names one property and its attribute flags.
type ShapeEntry struct {
	Key          PropertyKey
	Writable     bool
	Enumerable   bool
	Configurable bool
	Accessor     bool
}

type transitionKey struct {
	key      PropertyKey
	writable bool
	enum     bool
	config   bool
	accessor bool
}

func (e ShapeEntry) transitionKey() transitionKey {
	return transitionKey{e.Key, e.Writable, e.Enumerable, e.Configurable, e.Accessor}
}

// RootShape is the empty shape every fresh object starts from.
var RootShape = &Shape{}

// Depth is the number of slots an object with this shape occupies.
func (s *Shape) Depth() int { return s.depth }

// Transition returns the child shape that adds entry to s, creating
// and caching it on first use so that two objects which add the same
// property with the same attributes from the same starting shape end
// up sharing the resulting shape (the point of hidden classes).
func (s *Shape) Transition(entry ShapeEntry) *Shape {
	if s.transitions == nil {
		s.transitions = make(map[transitionKey]*Shape)
	}
	tk := entry.transitionKey()
	if child, ok := s.transitions[tk]; ok {
		return child
	}
	child := &Shape{parent: s, entry: entry, depth: s.depth + 1}
	s.transitions[tk] = child
	return child
}

// Find walks from this shape up to the root looking for key, returning
// the entry and its slot offset (0-based, in definition order).
func (s *Shape) Find(key PropertyKey) (ShapeEntry, int, bool) {
	for cur := s; cur.depth > 0; cur = cur.parent {
		if sameKey(cur.entry.Key, key) {
			return cur.entry, cur.depth - 1, true
		}
	}
	return ShapeEntry{}, -1, false
}

// Entries returns every entry from root to this shape, in definition
// (slot) order.
func (s *Shape) Entries() []ShapeEntry {
	out := make([]ShapeEntry, s.depth)
	for cur := s; cur.depth > 0; cur = cur.parent {
		out[cur.depth-1] = cur.entry
	}
	return out
}

func sameKey(a, b PropertyKey) bool {
	if a.Sym != nil || b.Sym != nil {
		return a.Sym == b.Sym
	}
	return a.Atom == b.Atom
}
