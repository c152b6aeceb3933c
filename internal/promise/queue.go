package promise

import "github.com/go-ecmascript/ecmascript/internal/value"

// Job is one queued microtask: a PromiseReactionJob, a
// PromiseResolveThenableJob, or a host-enqueued job (e.g. a completed
// async-function continuation). Run is invoked by Queue.Drain; the
// runtime package supplies the Call machinery via the closures stored
// in each concrete job, so this package never calls into the VM
// directly.
type Job func()

// Queue is the microtask queue (FIFO order, drained by Drain, which
// Context.ProcessMicrotasks calls, with a re-entrancy guard so
// a job that itself calls processMicrotasks does not recursively
// drain the same queue).
type Queue struct {
	jobs []Job

	draining bool

	// thenableCheck, when non-nil, lets Promise.resolve detect a
	// thenable value without this package depending on the object
	// model's Get/Call semantics. The runtime package installs it.
	thenableCheck func(v value.Value) (thenFn value.Value, ok bool)

	// ThenableJob is invoked to run the actual thenable chaining call;
	// installed by the runtime package alongside thenableCheck.
	ThenableJob func(thenable, thenFn value.Value, cap *Capability)

	// ReactionRunner invokes a reaction's handler (or passes the value
	// through when the handler is nil) and settles its capability.
	// Installed by the runtime package, which alone can perform a
	// function call.
	ReactionRunner func(r Reaction, state PromiseState, v value.Value)

	unhandled      map[*Promise]value.Value
	rejectCallback func(p *Promise, reason value.Value, handled bool)
}

// NewQueue creates an empty microtask queue.
func NewQueue() *Queue {
	return &Queue{unhandled: make(map[*Promise]value.Value)}
}

// SetRejectionCallback installs the host's setPromiseRejectCallback
// hook, invoked both when a
// promise rejects unhandled and, later, if a handler is attached.
func (q *Queue) SetRejectionCallback(cb func(p *Promise, reason value.Value, handled bool)) {
	q.rejectCallback = cb
}

// SetThenableCheck installs the runtime's thenable-detection hook,
// letting Promise.resolve chain through a `then` method without this
// package depending on Get/Call semantics.
func (q *Queue) SetThenableCheck(fn func(v value.Value) (thenFn value.Value, ok bool)) {
	q.thenableCheck = fn
}

func (q *Queue) trackUnhandledRejection(p *Promise, reason value.Value) {
	q.unhandled[p] = reason
	if q.rejectCallback != nil {
		q.rejectCallback(p, reason, false)
	}
}

func (q *Queue) untrackUnhandledRejection(p *Promise) {
	if _, ok := q.unhandled[p]; !ok {
		return
	}
	delete(q.unhandled, p)
	if q.rejectCallback != nil {
		q.rejectCallback(p, p.Result, true)
	}
}

// UnhandledRejections returns the reasons of every promise that has
// rejected without a handler so far, for hosts that poll instead of
// installing a rejection callback. The silent-accumulation default:
// entries stay until a late handler retracts them.
func (q *Queue) UnhandledRejections() []value.Value {
	out := make([]value.Value, 0, len(q.unhandled))
	for _, reason := range q.unhandled {
		out = append(out, reason)
	}
	return out
}

// Enqueue appends a raw job (used by the runtime for async-function
// continuations and queueMicrotask).
func (q *Queue) Enqueue(j Job) { q.jobs = append(q.jobs, j) }

// EnqueuePromiseReactionJob schedules the PromiseReactionJob for one
// reaction once its promise has settled to state with value v.
func (q *Queue) EnqueuePromiseReactionJob(r Reaction, state PromiseState, v value.Value) {
	q.jobs = append(q.jobs, func() {
		if q.ReactionRunner != nil {
			q.ReactionRunner(r, state, v)
		}
	})
}

// EnqueuePromiseResolveThenableJob schedules the job that calls a
// thenable's `then` method with fresh resolve/reject functions bound
// to self.
func (q *Queue) EnqueuePromiseResolveThenableJob(thenable, thenFn value.Value, self *Capability) {
	q.jobs = append(q.jobs, func() {
		if q.ThenableJob != nil {
			q.ThenableJob(thenable, thenFn, self)
		}
	})
}

// Drain runs every queued job to exhaustion, including jobs newly
// enqueued by earlier jobs.
// maxPasses bounds pathological job->enqueue->job cycles (0 means
// unbounded); it returns the number of jobs executed.
func (q *Queue) Drain(maxPasses int) int {
	if q.draining {
		return 0 // re-entrancy guard: an inner processMicrotasks call is a no-op
	}
	q.draining = true
	defer func() { q.draining = false }()

	ran := 0
	passes := 0
	for len(q.jobs) > 0 {
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		job()
		ran++
		passes++
		if maxPasses > 0 && passes >= maxPasses && len(q.jobs) > 0 {
			break
		}
	}
	return ran
}

// Pending reports whether any microtask is queued.
func (q *Queue) Pending() bool { return len(q.jobs) > 0 }
