// Package module implements the Module Record state machine and
// linking/evaluation order (Unlinked -> Linking -> Linked
// -> Evaluating -> Evaluated, with a parallel Errored state reachable
// from any step), including Tarjan's strongly-connected-components
// algorithm to detect import cycles during linking the way a native
// ES module loader's graph walk does.
package module

import (
	"fmt"

	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// Status is a module record's position in its lifecycle.
type Status int

const (
	Unlinked Status = iota
	Linking
	Linked
	Evaluating
	EvaluatingAsync
	Evaluated
	Errored
)

func (s Status) String() string {
	switch s {
	case Unlinked:
		return "unlinked"
	case Linking:
		return "linking"
	case Linked:
		return "linked"
	case Evaluating:
		return "evaluating"
	case EvaluatingAsync:
		return "evaluating-async"
	case Evaluated:
		return "evaluated"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ImportEntry is one binding a module imports from another.
type ImportEntry struct {
	ModuleRequest string
	ImportName    string // "*" for a namespace import, "default" for default, "" for a side-effect-only request
	LocalName     string
}

// ExportEntry is one binding a module exports, either locally defined
// or re-exported from another module.
type ExportEntry struct {
	ExportName    string
	LocalName     string // "" if ModuleRequest != ""
	ModuleRequest string // "" unless this is a re-export
	ImportName    string // for re-exports: "" means `export * from`
}

// Record is one module's linkage state. The Program/Imports/Exports
// fields are populated by FromProgram after parsing; Namespace is built
// lazily on first access.
type Record struct {
	Specifier string
	Program   *ast.Program
	Imports   []ImportEntry
	Exports   []ExportEntry

	Status Status
	Error  error

	Resolve func(specifier string) (*Record, error)

	Namespace *value.Object

	// Tarjan bookkeeping, reset at the start of each Link call.
	dfsIndex   int
	dfsLowlink int
	onStack    bool
	visited    bool
}

// Loader links and evaluates a module graph rooted at an entry
// specifier, resolving further specifiers through the Resolve
// callback each Record carries, set by the host embedding.
type Loader struct {
	modules map[string]*Record
	counter int
}

func NewLoader() *Loader {
	return &Loader{modules: make(map[string]*Record)}
}

// Register adds a parsed module to the loader's cache under its own
// specifier, so repeated imports of the same specifier resolve to the
// same Record.
func (l *Loader) Register(r *Record) { l.modules[r.Specifier] = r }

// Get returns the cached Record for specifier, if registered.
func (l *Loader) Get(specifier string) (*Record, bool) {
	r, ok := l.modules[specifier]
	return r, ok
}

// Link performs Tarjan's algorithm over the import graph starting at
// root, detecting cycles and assigning each strongly-connected
// component's members the same linking stage. An import cycle is
// legal, not an error; Link only
// fails if resolution of some import fails or a named import cannot
// be found once all modules in the component have finished
// declaring their exports.
func (l *Loader) Link(root *Record) error {
	if root.Status != Unlinked {
		return nil
	}
	l.counter = 0
	var stack []*Record
	var visit func(m *Record) error

	visit = func(m *Record) error {
		m.dfsIndex = l.counter
		m.dfsLowlink = l.counter
		l.counter++
		m.visited = true
		m.onStack = true
		m.Status = Linking
		stack = append(stack, m)

		for _, imp := range m.Imports {
			dep, ok := l.modules[imp.ModuleRequest]
			if !ok {
				if m.Resolve == nil {
					return fmt.Errorf("module %q: cannot resolve %q", m.Specifier, imp.ModuleRequest)
				}
				resolved, err := m.Resolve(imp.ModuleRequest)
				if err != nil {
					m.Status = Errored
					m.Error = err
					return err
				}
				dep = resolved
				l.modules[dep.Specifier] = dep
				// Also key by the raw request so evaluation-order walks
				// and export resolution find it without re-resolving.
				l.modules[imp.ModuleRequest] = dep
			}
			if !dep.visited {
				if err := visit(dep); err != nil {
					return err
				}
				if dep.dfsLowlink < m.dfsLowlink {
					m.dfsLowlink = dep.dfsLowlink
				}
			} else if dep.onStack {
				if dep.dfsIndex < m.dfsLowlink {
					m.dfsLowlink = dep.dfsIndex
				}
			}
		}

		if m.dfsLowlink == m.dfsIndex {
			var component []*Record
			for {
				n := len(stack) - 1
				member := stack[n]
				stack = stack[:n]
				member.onStack = false
				component = append(component, member)
				if member == m {
					break
				}
			}
			for _, member := range component {
				if err := resolveExports(member, l); err != nil {
					member.Status = Errored
					member.Error = err
					return err
				}
				member.Status = Linked
			}
		}
		return nil
	}

	return visit(root)
}

// resolveExports validates that every named import the module
// declares is satisfied by the target module's export list, following
// re-exports transitively (ResolveExport, simplified to reject only
// the unresolvable/ambiguous cases).
func resolveExports(m *Record, l *Loader) error {
	for _, imp := range m.Imports {
		if imp.ImportName == "" || imp.ImportName == "*" {
			continue
		}
		dep, ok := l.modules[imp.ModuleRequest]
		if !ok {
			return fmt.Errorf("module %q: unresolved dependency %q", m.Specifier, imp.ModuleRequest)
		}
		if !hasExport(dep, imp.ImportName, l, map[*Record]bool{}) {
			return fmt.Errorf("module %q: the requested module %q does not provide an export named %q",
				m.Specifier, imp.ModuleRequest, imp.ImportName)
		}
	}
	return nil
}

func hasExport(m *Record, name string, l *Loader, seen map[*Record]bool) bool {
	if seen[m] {
		return false
	}
	seen[m] = true
	for _, e := range m.Exports {
		if e.ExportName == "" && e.ModuleRequest != "" {
			// `export * from`: every non-default export of the dependency.
			if dep, ok := l.modules[e.ModuleRequest]; ok && name != "default" && hasExport(dep, name, l, seen) {
				return true
			}
			continue
		}
		if e.ExportName != name {
			continue
		}
		if e.ModuleRequest == "" || e.ImportName == "*" {
			return true
		}
		dep, ok := l.modules[e.ModuleRequest]
		if !ok {
			return false
		}
		reexported := e.ImportName
		if reexported == "" {
			reexported = name
		}
		if hasExport(dep, reexported, l, seen) {
			return true
		}
	}
	return false
}

// EvaluationOrder returns the modules reachable from root as a linear
// schedule that respects dependency order (depth-first post-order,
// dependencies before dependents, each module listed exactly once).
func (l *Loader) EvaluationOrder(root *Record) []*Record {
	var order []*Record
	seen := make(map[*Record]bool)
	var visit func(m *Record)
	visit = func(m *Record) {
		if seen[m] {
			return
		}
		seen[m] = true
		for _, imp := range m.Imports {
			if dep, ok := l.modules[imp.ModuleRequest]; ok {
				visit(dep)
			}
		}
		order = append(order, m)
	}
	visit(root)
	return order
}
