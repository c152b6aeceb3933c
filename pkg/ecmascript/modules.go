package ecmascript

import (
	"fmt"

	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/module"
	"github.com/go-ecmascript/ecmascript/internal/parser"
	"github.com/go-ecmascript/ecmascript/internal/value"
	"github.com/go-ecmascript/ecmascript/internal/vm"
)

// ResolveFunc maps an import specifier, relative to the module that
// requested it, onto the key the module cache and LoadFunc use.
type ResolveFunc func(referrer, specifier string) string

// LoadFunc fetches the source text for a resolved module key. The
// engine owns linking and evaluation; the host owns only resolution
// and source I/O.
type LoadFunc func(key string) (source string, err error)

// SetModuleLoader installs the host's module resolution hooks. Without
// them, a module that imports anything fails to link; modules with no
// imports evaluate fine.
func (c *Context) SetModuleLoader(resolve ResolveFunc, load LoadFunc) {
	c.resolveHook = resolve
	c.loadHook = load
}

// WithModuleLoader installs the module loader hooks at construction
// time.
func WithModuleLoader(resolve ResolveFunc, load LoadFunc) Option {
	return func(cfg *config) { cfg.resolve, cfg.load = resolve, load }
}

// evalModule parses, links, and evaluates a module graph rooted at the
// given source, returning the entry module body's completion value.
// Records are cached on the context, so two Eval calls importing the
// same specifier share one evaluation.
func (c *Context) evalModule(source, filename string) (Value, error) {
	prog, errList := parser.ParseModule(source, filename, c.rt.atoms)
	if len(errList) > 0 {
		return Value{}, errList
	}

	if c.loader == nil {
		c.loader = module.NewLoader()
	}
	root := module.FromProgram(filename, prog)
	root.Resolve = c.moduleResolver(filename)
	c.loader.Register(root)

	if err := c.loader.Link(root); err != nil {
		return Value{}, err
	}

	// Allocate every namespace object before running any body, so
	// cyclic imports observe a (possibly still empty) exports object
	// rather than a missing module.
	order := c.loader.EvaluationOrder(root)
	for _, rec := range order {
		if rec.Namespace == nil {
			rec.Namespace = value.NewObject(nil)
		}
	}

	linkResolve := func(request string) (*value.Object, error) {
		rec, ok := c.loader.Get(request)
		if !ok {
			return nil, fmt.Errorf("module %q is not linked", request)
		}
		return rec.Namespace, nil
	}

	var result value.Value
	for _, rec := range order {
		if rec.Status == module.Evaluated {
			continue
		}
		chunk, err := bytecode.Compile(rec.Program, c.rt.atoms)
		if err != nil {
			rec.Status = module.Errored
			rec.Error = err
			return Value{}, err
		}
		rec.Status = module.Evaluating
		v, err := c.vm.RunModule(chunk, &vm.ModuleLinkage{Exports: rec.Namespace, Resolve: linkResolve})
		if err != nil {
			rec.Status = module.Errored
			rec.Error = err
			if jv, ok := vm.ThrownValue(err); ok {
				c.errVal = wrapValue(jv, c)
				c.hasErr = true
			}
			return Value{}, err
		}
		rec.Status = module.Evaluated
		if rec == root {
			result = v
		}
	}
	return wrapValue(result, c), nil
}

// moduleResolver builds the per-record Resolve callback the Loader
// calls during linking, closing over the referrer.
func (c *Context) moduleResolver(referrer string) func(string) (*module.Record, error) {
	return func(specifier string) (*module.Record, error) {
		if c.resolveHook == nil || c.loadHook == nil {
			return nil, fmt.Errorf("module %q: no module loader installed (specifier %q)", referrer, specifier)
		}
		key := c.resolveHook(referrer, specifier)
		if rec, ok := c.loader.Get(key); ok {
			return rec, nil
		}
		source, err := c.loadHook(key)
		if err != nil {
			return nil, fmt.Errorf("module %q: load failed: %w", key, err)
		}
		prog, errList := parser.ParseModule(source, key, c.rt.atoms)
		if len(errList) > 0 {
			return nil, errList
		}
		rec := module.FromProgram(key, prog)
		rec.Resolve = c.moduleResolver(key)
		c.loader.Register(rec)
		return rec, nil
	}
}
