package tempo

import (
	"fmt"
)

// Tx is the per-tick handle passed to every system resume. It reaches the
// external store, defers mutations, reads other systems' results and hops
// to the scheduler thread for main-thread-only resources.
//
// A Tx is shared by all systems of one run; everything it exposes is either
// immutable, internally synchronized, or guarded by the scheduler's own
// mutual exclusion guarantees.
type Tx struct {
	store    Store
	cmds     *CommandCollector
	results  *resultsStore
	schedule *Schedule
	main     mainDispatch
}

// Store returns the external data store. The borrow discipline is the
// runner's: a system may only touch types its access declaration names.
func (tx *Tx) Store() Store {
	return tx.store
}

// Defer queues a mutation to run against the store after every system of
// the tick has finished.
func (tx *Tx) Defer(fn func(Store)) {
	tx.cmds.Push(fn)
}

// Result returns the result produced this tick by the given system. ok is
// false while the system has not finished, was skipped, or produced nil.
// Only meaningful for predecessor systems; anything else is racy by
// construction and the schedule should declare an edge instead.
func (tx *Tx) Result(id SystemID) (any, bool) {
	return tx.results.raw(id)
}

// ResultOf returns the typed result produced by the given system. Panics if
// the value is present but not of type T.
func ResultOf[T any](tx *Tx, id SystemID) (T, bool) {
	var zero T
	v, ok := tx.Result(id)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("tempo: result for system %d is %T, not %T", id, v, zero))
	}
	return typed, true
}

// OnMain executes fn on the scheduler thread and blocks until it returns.
// This is the only path by which a system running on a worker goroutine may
// touch main-thread-only resources. Under the serial runner the calling
// goroutine is the scheduler thread and fn runs inline.
func (tx *Tx) OnMain(fn func(res *MainThreadResources)) {
	tx.main.sendWork(fn)
}

// mainDispatch abstracts over how main-thread work reaches the scheduler
// thread: inline for the serial runner, channel-routed for the parallel
// runner.
type mainDispatch interface {
	sendWork(fn func(res *MainThreadResources))
}
