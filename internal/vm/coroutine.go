package vm

import (
	"github.com/go-ecmascript/ecmascript/internal/atom"
	"github.com/go-ecmascript/ecmascript/internal/bytecode"
	"github.com/go-ecmascript/ecmascript/internal/promise"
	"github.com/go-ecmascript/ecmascript/internal/value"
)

// The VM's frame/stack slices are a single shared execution context,
// not one per goroutine, so a suspended generator or async function
// needs its own saved copy swapped in and out around every
// resume/suspend boundary — a cooperative fiber, not true concurrency.
// Exactly one of the controlling goroutine and the fiber goroutine is
// ever runnable at a time, handed off over an unbuffered channel pair,
// so vm.frames/vm.stack and vm.genStack are never touched from two
// goroutines at once.

type genResumeKind int

const (
	genResumeNext genResumeKind = iota
	genResumeThrow
	genResumeReturn
)

// genResumeMsg is sent into a suspended fiber to resume it.
type genResumeMsg struct {
	kind genResumeKind
	val  value.Value
}

// genYieldMsg is sent out of a fiber: either a suspension (done=false,
// at a yield or an await) or the fiber's final completion.
type genYieldMsg struct {
	val  value.Value
	done bool
	err  error
}

// generatorState is the fiber backing one generator or async function
// invocation, addressed through the Generator-class object's Internal
// slot (for generators) or kept unexported on the VM's driveAsync call
// chain (for async functions, which have no JS-visible iterator).
type generatorState struct {
	cl   *bytecode.Closure
	this value.Value
	args []value.Value

	resumeCh chan genResumeMsg
	yieldCh  chan genYieldMsg

	frames []*Frame
	stack  []value.Value

	started  bool
	finished bool
}

// resumeGenerator drives gs's fiber one step: starting it on the first
// "next" resume, or handing a queued resume message to an already-
// suspended fiber, then blocking for its next yield/await/completion.
func (vm *VM) resumeGenerator(gs *generatorState, kind genResumeKind, v value.Value) (value.Value, bool, error) {
	if gs.finished {
		switch kind {
		case genResumeThrow:
			return value.Undefined, true, &jsError{val: v}
		case genResumeReturn:
			return v, true, nil
		default:
			return value.Undefined, true, nil
		}
	}
	if !gs.started {
		switch kind {
		case genResumeThrow:
			gs.finished = true
			return value.Undefined, true, &jsError{val: v}
		case genResumeReturn:
			gs.finished = true
			return v, true, nil
		}
	}

	savedFrames, savedStack := vm.frames, vm.stack
	vm.frames, vm.stack = gs.frames, gs.stack
	vm.genStack = append(vm.genStack, gs)

	if !gs.started {
		gs.started = true
		go func() {
			res, err := vm.call(gs.cl, gs.this, gs.args, value.Undefined)
			gs.yieldCh <- genYieldMsg{val: res, done: true, err: err}
		}()
	} else {
		gs.resumeCh <- genResumeMsg{kind: kind, val: v}
	}
	msg := <-gs.yieldCh

	vm.genStack = vm.genStack[:len(vm.genStack)-1]
	gs.frames, gs.stack = vm.frames, vm.stack
	vm.frames, vm.stack = savedFrames, savedStack

	if msg.done {
		gs.finished = true
		if msg.err != nil {
			if gr, ok := msg.err.(*genReturnSignal); ok {
				return gr.val, true, nil
			}
			return value.Undefined, true, msg.err
		}
		return msg.val, true, nil
	}
	return msg.val, false, nil
}

// doYield suspends the innermost running generator fiber at a `yield`
// (or, for `yield*`, delegates to an inner iterable first). It runs
// inside the fiber goroutine, never the controller.
func (vm *VM) doYield(f *Frame, v value.Value, isStar bool) (value.Value, error) {
	if len(vm.genStack) == 0 {
		return value.Undefined, vm.typeError("yield is only valid inside a generator")
	}
	gs := vm.genStack[len(vm.genStack)-1]
	if isStar {
		return vm.yieldDelegate(gs, v)
	}
	return vm.suspend(gs, v)
}

// suspend is the shared send/receive rendezvous behind a single
// yield or await point.
func (vm *VM) suspend(gs *generatorState, v value.Value) (value.Value, error) {
	gs.yieldCh <- genYieldMsg{val: v, done: false}
	resp := <-gs.resumeCh
	switch resp.kind {
	case genResumeThrow:
		return value.Undefined, &jsError{val: resp.val}
	case genResumeReturn:
		return value.Undefined, &genReturnSignal{val: resp.val}
	default:
		return resp.val, nil
	}
}

// yieldDelegate implements `yield* iterable`: drain the inner
// iterator, forwarding each value out as an ordinary yield. A
// .throw()/.return() delivered to the outer generator while delegating
// closes the inner iterator and propagates, rather than being relayed
// into it — a documented simplification of the full three-way
// yield* protocol.
func (vm *VM) yieldDelegate(gs *generatorState, iterable value.Value) (value.Value, error) {
	iter, err := vm.getIterator(iterable, false)
	if err != nil {
		return value.Undefined, err
	}
	for {
		v, done, err := vm.iteratorNext(iter)
		if err != nil {
			return value.Undefined, err
		}
		if done {
			return v, nil
		}
		res, err := vm.suspend(gs, v)
		if err != nil {
			vm.iteratorClose(iter)
			return value.Undefined, err
		}
		_ = res
	}
}

// doAwait suspends the running async function's fiber at an `await`.
// It shares the same rendezvous as doYield; driveAsync is the only
// caller that ever resumes it, always with genResumeNext or
// genResumeThrow once the awaited promise settles.
func (vm *VM) doAwait(v value.Value) (value.Value, error) {
	if len(vm.genStack) == 0 {
		return value.Undefined, vm.typeError("await is only valid inside an async function")
	}
	gs := vm.genStack[len(vm.genStack)-1]
	return vm.suspend(gs, v)
}

// newGenerator builds the Generator-class object `callValue` returns
// for a call to a generator (or async generator) function; the body
// does not start running until the first `.next()`.
func (vm *VM) newGenerator(fn *value.Object, cl *bytecode.Closure, this value.Value, args []value.Value) *value.Object {
	gs := &generatorState{
		cl:       cl,
		this:     this,
		args:     args,
		resumeCh: make(chan genResumeMsg),
		yieldCh:  make(chan genYieldMsg),
	}
	obj := value.NewObject(vm.Realm.GeneratorPrototype)
	obj.Class = "Generator"
	obj.Internal = gs
	return obj
}

func (vm *VM) iterResult(v value.Value, done bool) value.Value {
	o := value.NewObject(vm.Realm.ObjectPrototype)
	o.DefineOwnDataProperty(value.StringKey(atom.Value), v, true, true, true)
	o.DefineOwnDataProperty(value.StringKey(atom.Done), value.Bool(done), true, true, true)
	return value.Object_(o)
}

func generatorStateOf(vm *VM, this value.Value) (*generatorState, error) {
	if !this.IsObject() {
		return nil, vm.typeError("not a generator")
	}
	gs, ok := this.Obj().Internal.(*generatorState)
	if !ok {
		return nil, vm.typeError("not a generator")
	}
	return gs, nil
}

// installGeneratorPrototype wires up the three iterator-protocol
// methods every generator object inherits, the minimal
// {next,throw,return} surface the iteration protocol uses. Generators are
// also iterable over themselves (Symbol.iterator returns `this`),
// matching the built-in %GeneratorPrototype% shape.
func installGeneratorPrototype(vm *VM, r *Realm) {
	p := r.GeneratorPrototype
	vm.defineMethod(p, "next", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		gs, err := generatorStateOf(vm, this)
		if err != nil {
			return value.Undefined, err
		}
		v, done, err := vm.resumeGenerator(gs, genResumeNext, arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return vm.iterResult(v, done), nil
	})
	vm.defineMethod(p, "throw", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		gs, err := generatorStateOf(vm, this)
		if err != nil {
			return value.Undefined, err
		}
		v, done, err := vm.resumeGenerator(gs, genResumeThrow, arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return vm.iterResult(v, done), nil
	})
	vm.defineMethod(p, "return", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		gs, err := generatorStateOf(vm, this)
		if err != nil {
			return value.Undefined, err
		}
		v, done, err := vm.resumeGenerator(gs, genResumeReturn, arg(args, 0))
		if err != nil {
			return value.Undefined, err
		}
		return vm.iterResult(v, done), nil
	})
	vm.defineMethodSymbol(p, value.WellKnownSymbolIterator, "[Symbol.iterator]", 0, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		return this, nil
	})
}

// --- async functions ---

// runAsync implements an async function call: the body runs
// synchronously up to its first `await` or to completion
// (run-to-completion-until-first-suspend), then returns the
// pending promise immediately; later awaits resume through
// driveAsync, scheduled as reactions on the awaited promise.
func (vm *VM) runAsync(fn *value.Object, cl *bytecode.Closure, this value.Value, args []value.Value) value.Value {
	obj := value.NewObject(vm.Realm.PromisePrototype)
	obj.Class = "Promise"
	cap := promise.NewCapability(obj, vm.Realm.Microtasks)

	gs := &generatorState{
		cl:       cl,
		this:     this,
		args:     args,
		resumeCh: make(chan genResumeMsg),
		yieldCh:  make(chan genYieldMsg),
	}
	vm.driveAsync(gs, cap, genResumeNext, value.Undefined)
	return value.Object_(obj)
}

// driveAsync advances an async function's fiber by one resume, then
// either settles cap (the body ran to completion) or registers
// driveAsync as the continuation of the promise the body is awaiting.
func (vm *VM) driveAsync(gs *generatorState, cap *promise.Capability, kind genResumeKind, v value.Value) {
	savedFrames, savedStack := vm.frames, vm.stack
	vm.frames, vm.stack = gs.frames, gs.stack
	vm.genStack = append(vm.genStack, gs)

	if !gs.started {
		gs.started = true
		go func() {
			res, err := vm.call(gs.cl, gs.this, gs.args, value.Undefined)
			gs.yieldCh <- genYieldMsg{val: res, done: true, err: err}
		}()
	} else {
		gs.resumeCh <- genResumeMsg{kind: kind, val: v}
	}
	msg := <-gs.yieldCh

	vm.genStack = vm.genStack[:len(vm.genStack)-1]
	gs.frames, gs.stack = vm.frames, vm.stack
	vm.frames, vm.stack = savedFrames, savedStack

	if msg.done {
		gs.finished = true
		if msg.err != nil {
			if je, ok := msg.err.(*jsError); ok {
				cap.Reject(je.val)
			} else {
				cap.Reject(value.String(msg.err.Error()))
			}
			return
		}
		cap.Resolve(msg.val)
		return
	}

	awaited := vm.promiseResolveValue(msg.val)
	onFulfilled := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		vm.driveAsync(gs, cap, genResumeNext, arg(args, 0))
		return value.Undefined, nil
	})
	onRejected := vm.nativeFunction("", 1, func(vm *VM, this value.Value, args []value.Value, nt value.Value) (value.Value, error) {
		vm.driveAsync(gs, cap, genResumeThrow, arg(args, 0))
		return value.Undefined, nil
	})
	pr, _ := awaited.Internal.(*promise.Promise)
	if pr == nil {
		cap.Reject(vm.typeErrorValue("await target is not a promise"))
		return
	}
	pr.Then(onFulfilled, onRejected, &promise.Capability{Resolve: func(value.Value) {}, Reject: func(value.Value) {}})
}

// promiseResolveValue implements PromiseResolve: returns v itself if
// already a promise object, else a freshly created promise resolved
// with v.
func (vm *VM) promiseResolveValue(v value.Value) *value.Object {
	if v.IsObject() {
		if _, ok := v.Obj().Internal.(*promise.Promise); ok {
			return v.Obj()
		}
	}
	obj := value.NewObject(vm.Realm.PromisePrototype)
	obj.Class = "Promise"
	cap := promise.NewCapability(obj, vm.Realm.Microtasks)
	cap.Resolve(v)
	return obj
}

func (vm *VM) typeErrorValue(msg string) value.Value {
	err, _ := vm.typeError(msg).(*jsError)
	if err == nil {
		return value.String(msg)
	}
	return err.val
}
