package vm

import "github.com/go-ecmascript/ecmascript/internal/value"

// genReturnSignal is the Go-level control value doYield returns when a
// generator is resumed via .return(v): it carries the abrupt-return
// completion through doYield's caller (the OpYield case) so the
// suspended frame's pending finally blocks still run when an iterator
// closes on abrupt completion. It never
// escapes the vm package.
type genReturnSignal struct{ val value.Value }

func (g *genReturnSignal) Error() string { return "generator return" }

// handleThrow routes a thrown value to the innermost still-available
// catch or finally target in f's active try handlers:
// restore the operand stack to the handler's
// recorded depth, then resume execution there. Only *jsError values
// (ECMAScript throws) are caught this way; any other Go error is a VM
// or compiler-internal failure that propagates straight to the host.
func (vm *VM) handleThrow(f *Frame, err error) (handled bool, pushed value.Value, ferr error) {
	je, ok := err.(*jsError)
	if !ok {
		return false, value.Undefined, nil
	}
	for len(f.tryHandlers) > 0 {
		h := &f.tryHandlers[len(f.tryHandlers)-1]
		if h.info.HasCatch && !h.inCatch {
			if h.stackDepth <= len(vm.stack) {
				vm.stack = vm.stack[:h.stackDepth]
			}
			vm.push(je.val)
			f.ip = h.info.CatchTarget
			h.inCatch = true
			return true, je.val, nil
		}
		if h.info.HasFinally && !h.inFinally {
			if h.stackDepth <= len(vm.stack) {
				vm.stack = vm.stack[:h.stackDepth]
			}
			f.ip = h.info.FinallyTarget
			h.inFinally = true
			h.pending = &thrownValue{val: je.val}
			return true, je.val, nil
		}
		// This handler has already run both of its edges (its catch threw,
		// or it has no finally left to try) — it can no longer help; pop it
		// and let the next enclosing handler (if any) have a turn.
		f.tryHandlers = f.tryHandlers[:len(f.tryHandlers)-1]
	}
	return false, value.Undefined, nil
}

// returnViaFinally implements the abrupt-return completion edge of
// try/finally: a `return` reached while a finally block is still
// owed must run that finally before the function actually returns.
// It reports whether a pending finally absorbed the return (the
// caller should `continue` the dispatch loop); when it returns false,
// v is the caller's real return value.
func (vm *VM) returnViaFinally(f *Frame, v value.Value) bool {
	for len(f.tryHandlers) > 0 {
		h := &f.tryHandlers[len(f.tryHandlers)-1]
		if h.info.HasFinally && !h.inFinally {
			if h.stackDepth <= len(vm.stack) {
				vm.stack = vm.stack[:h.stackDepth]
			}
			f.ip = h.info.FinallyTarget
			h.inFinally = true
			rv := v
			h.pendingReturn = &rv
			return true
		}
		f.tryHandlers = f.tryHandlers[:len(f.tryHandlers)-1]
	}
	return false
}
