package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// ModuleLinkage is the evaluation-time view of one module's place in a
// linked graph: the exports object its OpExportBinding instructions
// publish into, and a resolver from request specifiers to the already-
// evaluated (or at least allocated, for cycles) exports object of each
// dependency. The embedding layer that owns the module records builds
// one per module body and passes it to RunModule.
type ModuleLinkage struct {
	Exports *value.Object
	Resolve func(request string) (*value.Object, error)
}

// RunModule executes a module body chunk with link installed as the
// current module context, restoring the previous context afterwards so
// nested graphs (a host call re-entering Eval) behave.
func (vm *VM) RunModule(chunk *bytecode.Chunk, link *ModuleLinkage) (value.Value, error) {
	prev := vm.moduleCtx
	vm.moduleCtx = link
	defer func() { vm.moduleCtx = prev }()
	return vm.RunProgram(chunk)
}

func (vm *VM) resolveModuleRequest(f *Frame, request string) (*value.Object, error) {
	if vm.moduleCtx == nil || vm.moduleCtx.Resolve == nil {
		return nil, vm.newError("SyntaxError", "import/export outside of module evaluation")
	}
	return vm.moduleCtx.Resolve(request)
}

// importBinding installs one imported name into its local slot.
func (vm *VM) importBinding(f *Frame, b bytecode.ImportBinding) error {
	dep, err := vm.resolveModuleRequest(f, b.Request)
	if err != nil {
		return err
	}
	if b.Name == "" {
		f.locals[b.Slot].Value = value.Object_(dep)
		return nil
	}
	slot, ok := dep.OwnProperty(value.StringKey(vm.Atoms.Intern(b.Name)))
	if !ok {
		return vm.newError("SyntaxError", "the requested module '"+b.Request+"' does not provide an export named '"+b.Name+"'")
	}
	f.locals[b.Slot].Value = slot.Value
	return nil
}

// exportBinding publishes one binding on the current module's exports
// object: a named local slot, or, for a star re-export, every
// non-default export of the dependency that is not already defined.
func (vm *VM) exportBinding(f *Frame, b bytecode.ExportBinding) error {
	if vm.moduleCtx == nil || vm.moduleCtx.Exports == nil {
		return vm.newError("SyntaxError", "import/export outside of module evaluation")
	}
	exports := vm.moduleCtx.Exports
	if b.Star {
		dep, err := vm.resolveModuleRequest(f, b.Request)
		if err != nil {
			return err
		}
		for _, key := range dep.OwnKeys(vm.Atoms) {
			if key.IsSymbol() {
				continue
			}
			name := vm.Atoms.MustGetString(key.Atom)
			if name == "default" {
				continue
			}
			if _, exists := exports.OwnProperty(key); exists {
				continue
			}
			if slot, ok := dep.OwnProperty(key); ok {
				exports.DefineOwnDataProperty(key, slot.Value, true, true, false)
			}
		}
		return nil
	}
	key := value.StringKey(vm.Atoms.Intern(b.Name))
	exports.DefineOwnDataProperty(key, f.locals[b.Slot].Value, true, true, false)
	return nil
}
