// Package ecmascript is the host embedding surface: a
// Runtime owns the atom table and can host several Contexts, each of
// which evaluates source text and tracks its own pending exception.
// Construction uses functional options
// (New/WithMaxMicrotaskPasses/WithPromiseRejectionCallback/WithStrict).
package ecmascript

import (
	"github.com/go-ecmascript/ecmascript/internal/ast"
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/errors"
	"github.com/go-ecmascript/ecmascript/internal/module"
	"github.com/go-ecmascript/ecmascript/internal/parser"
	"github.com/go-ecmascript/ecmascript/internal/promise"
	"github.com/go-ecmascript/ecmascript/internal/value"
	"github.com/go-ecmascript/ecmascript/internal/vm"
)

// Runtime owns the atom table shared by every Context it creates,
// for its entire lifetime.
type Runtime struct {
	atoms *atom.Table
}

// NewRuntime creates a Runtime with a freshly pre-seeded atom table.
func NewRuntime() *Runtime {
	return &Runtime{atoms: atom.New()}
}

// config holds the options a Context is constructed with.
type config struct {
	maxMicrotaskPasses int
	strict             bool
	rejectCallback     func(reason Value, handled bool)
	resolve            ResolveFunc
	load               LoadFunc
}

// Option configures a Context at creation time.
type Option func(*config)

// WithMaxMicrotaskPasses bounds how many drain passes
// Context.ProcessMicrotasks runs before giving up. n <= 0 means drain
// to empty (the default).
func WithMaxMicrotaskPasses(n int) Option {
	return func(c *config) { c.maxMicrotaskPasses = n }
}

// WithStrict forces every Context.Eval call to compile as strict-mode
// code regardless of a leading "use strict" directive, for embedders
// that only ever host modern/module-shaped scripts.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithPromiseRejectionCallback installs the host unhandled-rejection
// callback at construction time. Without one, unhandled
// rejections accumulate silently.
func WithPromiseRejectionCallback(cb func(reason Value, handled bool)) Option {
	return func(c *config) { c.rejectCallback = cb }
}

// Context evaluates source text against one realm: its own global
// object, microtask queue, pending-exception slot, and per-context
// caches.
type Context struct {
	rt     *Runtime
	vm     *vm.VM
	cfg    config
	errVal Value
	hasErr bool

	loader      *module.Loader
	resolveHook ResolveFunc
	loadHook    LoadFunc
}

// CreateContext creates a new Context sharing rt's atom table.
func (rt *Runtime) CreateContext(opts ...Option) *Context {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := &Context{rt: rt, vm: vm.NewVM(rt.atoms), cfg: cfg}
	if cfg.rejectCallback != nil {
		ctx.SetPromiseRejectCallback(cfg.rejectCallback)
	}
	if cfg.resolve != nil && cfg.load != nil {
		ctx.SetModuleLoader(cfg.resolve, cfg.load)
	}
	return ctx
}

// Runtime returns the Runtime that owns this context's atom table.
func (c *Context) Runtime() *Runtime { return c.rt }

// Eval compiles and runs source as either a script or a module body,
// then drains microtasks once control would otherwise return
// to the host. A thrown value is recorded as the pending
// exception and also returned as a Go error.
func (c *Context) Eval(source, filename string, isModule bool) (Value, error) {
	if isModule {
		v, err := c.evalModule(source, filename)
		c.ProcessMicrotasks()
		return v, err
	}

	var prog *ast.Program
	var errList errors.List
	switch {
	case c.cfg.strict:
		prog, errList = parser.ParseScriptStrict(source, filename, c.rt.atoms)
	default:
		prog, errList = parser.ParseScript(source, filename, c.rt.atoms)
	}
	if len(errList) > 0 {
		return Value{}, errList
	}

	chunk, err := bytecode.Compile(prog, c.rt.atoms)
	if err != nil {
		return Value{}, err
	}

	result, err := c.vm.RunProgram(chunk)
	if err != nil {
		if jv, ok := vm.ThrownValue(err); ok {
			c.errVal = wrapValue(jv, c)
			c.hasErr = true
		}
		return Value{}, err
	}
	return wrapValue(result, c), nil
}

// ProcessMicrotasks drains the context's microtask queue, honoring
// WithMaxMicrotaskPasses.
func (c *Context) ProcessMicrotasks() {
	c.vm.Realm.Microtasks.Drain(c.cfg.maxMicrotaskPasses)
}

// HasPendingException reports whether an uncaught throw is recorded.
func (c *Context) HasPendingException() bool { return c.hasErr }

// PendingException returns the recorded thrown value, if any.
func (c *Context) PendingException() (Value, bool) { return c.errVal, c.hasErr }

// ClearPendingException discards the recorded thrown value.
func (c *Context) ClearPendingException() {
	c.errVal = Value{}
	c.hasErr = false
}

// SetPromiseRejectCallback installs or replaces the host's unhandled-
// rejection callback. handled reports whether a handler
// was later attached to the rejected promise (a late catch).
func (c *Context) SetPromiseRejectCallback(cb func(reason Value, handled bool)) {
	c.cfg.rejectCallback = cb
	c.vm.Realm.Microtasks.SetRejectionCallback(func(_ *promise.Promise, reason value.Value, handled bool) {
		cb(wrapValue(reason, c), handled)
	})
}

// UnhandledRejections returns the reasons of promises that rejected
// with no handler attached, for hosts that poll between Eval calls
// rather than installing a callback.
func (c *Context) UnhandledRejections() []Value {
	raw := c.vm.Realm.Microtasks.UnhandledRejections()
	out := make([]Value, len(raw))
	for i, r := range raw {
		out[i] = wrapValue(r, c)
	}
	return out
}

// Global returns the context's global object as a Value, letting a
// host install native bindings via the object model's property
// operations before or between Eval calls.
func (c *Context) Global() Value {
	return wrapValue(value.Object_(c.vm.Global), c)
}
