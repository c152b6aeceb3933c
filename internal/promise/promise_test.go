package promise

import (
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/value"
)

func newTestPromise(q *Queue) (*Promise, *Capability) {
	obj := value.NewObject(nil)
	cap := NewCapability(obj, q)
	return cap.Promise, cap
}

func TestSettlementIsMonotonic(t *testing.T) {
	q := NewQueue()
	p, cap := newTestPromise(q)

	if p.State != Pending {
		t.Fatalf("fresh promise state %v, expected pending", p.State)
	}
	cap.Resolve(value.Number(1))
	if p.State != Fulfilled {
		t.Fatalf("state after resolve %v, expected fulfilled", p.State)
	}
	cap.Reject(value.String("late"))
	if p.State != Fulfilled {
		t.Fatalf("reject after resolve changed state to %v", p.State)
	}
	cap.Resolve(value.Number(2))
	if !value.StrictEquals(p.Result, value.Number(1)) {
		t.Fatalf("second resolve changed the result")
	}
}

func TestRejectIsMonotonic(t *testing.T) {
	q := NewQueue()
	p, cap := newTestPromise(q)
	cap.Reject(value.String("boom"))
	if p.State != Rejected {
		t.Fatalf("state %v, expected rejected", p.State)
	}
	cap.Resolve(value.Number(1))
	if p.State != Rejected || !value.StrictEquals(p.Result, value.String("boom")) {
		t.Fatalf("resolve after reject mutated the promise")
	}
}

func TestReactionsNeverRunSynchronously(t *testing.T) {
	q := NewQueue()
	ran := false
	q.ReactionRunner = func(r Reaction, state PromiseState, v value.Value) { ran = true }

	p, cap := newTestPromise(q)
	_, downstream := newTestPromise(q)
	p.Then(nil, nil, downstream)
	cap.Resolve(value.Number(1))

	if ran {
		t.Fatalf("reaction ran synchronously during resolve")
	}
	if !q.Pending() {
		t.Fatalf("resolve should have enqueued the reaction")
	}
	q.Drain(0)
	if !ran {
		t.Fatalf("drain did not run the reaction")
	}
}

func TestThenOnSettledPromiseSchedules(t *testing.T) {
	q := NewQueue()
	var got []float64
	q.ReactionRunner = func(r Reaction, state PromiseState, v value.Value) {
		got = append(got, v.Float())
	}

	p, cap := newTestPromise(q)
	cap.Resolve(value.Number(7))
	q.Drain(0)
	_, downstream := newTestPromise(q)
	p.Then(nil, nil, downstream)
	if len(got) != 0 {
		t.Fatalf("then on a settled promise ran synchronously")
	}
	q.Drain(0)
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("reaction sequence %v, expected [7]", got)
	}
}

func TestDrainFIFO(t *testing.T) {
	q := NewQueue()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Enqueue(func() { order = append(order, i) })
	}
	q.Drain(0)
	for i, v := range order {
		if v != i {
			t.Fatalf("jobs ran out of order: %v", order)
		}
	}
}

func TestDrainRunsNewlyEnqueuedJobs(t *testing.T) {
	q := NewQueue()
	var order []string
	q.Enqueue(func() {
		order = append(order, "outer")
		q.Enqueue(func() { order = append(order, "inner") })
	})
	ran := q.Drain(0)
	if ran != 2 {
		t.Fatalf("expected 2 jobs run, got %d", ran)
	}
	if len(order) != 2 || order[1] != "inner" {
		t.Fatalf("nested enqueue not drained: %v", order)
	}
}

func TestDrainReentrancyGuard(t *testing.T) {
	q := NewQueue()
	inner := -1
	q.Enqueue(func() {
		inner = q.Drain(0) // re-entrant drain must be a no-op
	})
	q.Drain(0)
	if inner != 0 {
		t.Fatalf("re-entrant Drain ran %d jobs, expected 0", inner)
	}
}

func TestDrainMaxPasses(t *testing.T) {
	q := NewQueue()
	count := 0
	var loop func()
	loop = func() {
		count++
		q.Enqueue(loop)
	}
	q.Enqueue(loop)
	q.Drain(3)
	if count != 3 {
		t.Fatalf("bounded drain ran %d jobs, expected 3", count)
	}
}

func TestUnhandledRejectionCallback(t *testing.T) {
	q := NewQueue()
	type event struct {
		handled bool
		reason  value.Value
	}
	var events []event
	q.SetRejectionCallback(func(p *Promise, reason value.Value, handled bool) {
		events = append(events, event{handled, reason})
	})

	p, cap := newTestPromise(q)
	cap.Reject(value.String("oops"))
	if len(events) != 1 || events[0].handled {
		t.Fatalf("expected one unhandled event, got %+v", events)
	}

	// A late handler retracts the report.
	_, downstream := newTestPromise(q)
	p.Then(nil, nil, downstream)
	if len(events) != 2 || !events[1].handled {
		t.Fatalf("expected a handled follow-up event, got %+v", events)
	}
}

func TestSelfResolutionRejects(t *testing.T) {
	q := NewQueue()
	obj := value.NewObject(nil)
	cap := NewCapability(obj, q)
	cap.Resolve(value.Object_(obj))
	if cap.Promise.State != Rejected {
		t.Fatalf("resolving a promise with itself should reject, state=%v", cap.Promise.State)
	}
}
