// Package promise implements the Promise state machine and its
// reaction jobs, queued onto a single-threaded microtask
// Queue rather than dispatched across goroutines: the engine runs one
// script/module graph on one goroutine, so promise settlement needs
// ordering guarantees, not concurrency primitives.
package promise

import "github.com/go-ecmascript/ecmascript/internal/value"

// PromiseState is the promise's current settlement state. Transitions
// are monotonic: Pending -> Fulfilled or Pending -> Rejected, never
// back.
type PromiseState int32

const (
	Pending PromiseState = iota
	Fulfilled
	Rejected
)

func (s PromiseState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ResolveFunc and RejectFunc are the pair handed to an executor or to
// NewCapability's caller.
type ResolveFunc func(value.Value)
type RejectFunc func(value.Value)

// Reaction is one registered Then/Catch/Finally handler pair, recorded
// so it can be scheduled as a PromiseReactionJob once the promise it
// watches settles.
type Reaction struct {
	OnFulfilled *value.Object // callable, or nil for a pass-through reaction
	OnRejected  *value.Object
	Capability  *Capability // the derived promise (and its resolve/reject) this reaction settles
}

// Capability bundles a promise with the resolve/reject functions that
// settle it — the result of NewCapability.
type Capability struct {
	Promise *Promise
	Resolve ResolveFunc
	Reject  RejectFunc
}

// Promise is the internal slots backing a Promise-class Object
// (attached via Object.Internal). Resolve/Reject update State at once
// (resolving with a thenable is deferred to a queued job), but
// reactions are never run synchronously: they are enqueued as jobs on
// the owning Queue, so `.then` handlers always run as microtasks even
// for an already-settled promise.
type Promise struct {
	State           PromiseState
	Result          value.Value
	FulfillReacts   []Reaction
	RejectReacts    []Reaction
	Handled         bool // used by the unhandled-rejection tracker
	AlreadyResolved bool // guards an executor calling resolve/reject more than once

	self  *value.Object // the Object this Promise is the Internal slot of, for the self-resolution check
	queue *Queue
}

// NewCapability attaches a pending promise to obj (as its Internal
// slot) and returns it with its resolve/reject functions, wired to run
// reactions on q.
func NewCapability(obj *value.Object, q *Queue) *Capability {
	p := &Promise{State: Pending, self: obj, queue: q}
	obj.Internal = p
	cap := &Capability{Promise: p}
	cap.Resolve = func(v value.Value) { p.resolve(v, cap) }
	cap.Reject = func(v value.Value) { p.reject(v) }
	return cap
}

// resolve implements the [[Resolve]] internal closure: resolving with
// a thenable chains through its `then` rather than fulfilling
// immediately. Chaining detection is delegated to the caller (the
// runtime package, which
// has a Get/Call-capable interpreter) via Queue.SetThenableCheck.
func (p *Promise) resolve(v value.Value, self *Capability) {
	if p.AlreadyResolved {
		return
	}
	p.AlreadyResolved = true
	if v.IsObject() && v.Obj() == p.self {
		p.settle(Rejected, value.String("Chaining cycle detected for promise"))
		return
	}
	if checker := p.queue.thenableCheck; checker != nil {
		if thenFn, ok := checker(v); ok {
			p.queue.EnqueuePromiseResolveThenableJob(v, thenFn, self)
			return
		}
	}
	p.settle(Fulfilled, v)
}

func (p *Promise) reject(v value.Value) {
	if p.AlreadyResolved {
		return
	}
	p.AlreadyResolved = true
	p.settle(Rejected, v)
}

func (p *Promise) settle(state PromiseState, v value.Value) {
	p.State = state
	p.Result = v
	var reactions []Reaction
	if state == Fulfilled {
		reactions = p.FulfillReacts
	} else {
		reactions = p.RejectReacts
	}
	p.FulfillReacts = nil
	p.RejectReacts = nil
	for _, r := range reactions {
		p.queue.EnqueuePromiseReactionJob(r, state, v)
	}
	if state == Rejected && !p.Handled {
		p.queue.trackUnhandledRejection(p, v)
	}
}

// Then registers a reaction, scheduling it immediately as a microtask
// if the promise has already settled.
func (p *Promise) Then(onFulfilled, onRejected *value.Object, cap *Capability) {
	p.Handled = true
	p.queue.untrackUnhandledRejection(p)
	r := Reaction{OnFulfilled: onFulfilled, OnRejected: onRejected, Capability: cap}
	switch p.State {
	case Pending:
		p.FulfillReacts = append(p.FulfillReacts, r)
		p.RejectReacts = append(p.RejectReacts, r)
	case Fulfilled:
		p.queue.EnqueuePromiseReactionJob(r, Fulfilled, p.Result)
	case Rejected:
		p.queue.EnqueuePromiseReactionJob(r, Rejected, p.Result)
	}
}
