package tempo

import (
	"log/slog"
	"time"

	"github.com/rotisserie/eris"
)

// runState tracks a system's progress through one tick.
type runState uint8

const (
	stateNotStarted runState = iota
	stateRunning
	stateDone
)

// SerialRunner drives every system on the calling goroutine using manual
// cooperative stepping. There is no waker and no per-type locking: with a
// single goroutine, the absence of other runners is the mutual exclusion
// guarantee. A suspended system simply means "try something else"; between
// resumes the runner ticks the compute pool so background tasks progress
// even though the executor has no scheduling of its own.
type SerialRunner struct {
	cfg  *Config
	pool *ComputePool
	main *MainThreadResources
}

// NewSerialRunner creates a serial runner. cfg may be nil for defaults;
// pool may be nil if no background tasks are used.
func NewSerialRunner(cfg *Config, pool *ComputePool, main *MainThreadResources) *SerialRunner {
	if pool == nil {
		pool = NewComputePool()
	}
	return &SerialRunner{
		cfg:  cfg.normalized(),
		pool: pool,
		main: main,
	}
}

// Pool returns the compute pool this runner ticks between system resumes.
func (r *SerialRunner) Pool() *ComputePool {
	return r.pool
}

// Run executes one tick of the schedule against the store. Systems start
// in registration order as their predecessors finish; conflicting systems
// are therefore observed strictly in registration order. Deferred commands
// are applied after the last system finishes.
//
// The time budget is advisory and checked only before starting a system:
// once exceeded, no further systems start this tick, but systems already
// running are driven to completion so no half-written result is left
// dangling.
func (r *SerialRunner) Run(store Store, schedule *Schedule) (*TickResults, error) {
	n := schedule.Len()
	results := newResultsStore(n)
	cmds := NewCommandCollector()
	tx := &Tx{
		store:    store,
		cmds:     cmds,
		results:  results,
		schedule: schedule,
		main:     inlineDispatch{res: r.main},
	}

	states := make([]runState, n)
	start := time.Now()
	budgetLogged := false
	var firstErr error

	for {
		progress := false
		for _, node := range schedule.nodes {
			switch states[node.id] {
			case stateDone:
				continue

			case stateRunning:
				if r.stepSystem(node, tx, results, &firstErr) {
					states[node.id] = stateDone
				}
				progress = true

			case stateNotStarted:
				if !ready(node, results) {
					continue
				}
				if r.cfg.TimeBudget > 0 && time.Since(start) > r.cfg.TimeBudget {
					if !budgetLogged {
						slog.Debug("tempo: time budget exceeded, deferring remaining systems",
							"budget", r.cfg.TimeBudget, "next", node.name)
						budgetLogged = true
					}
					continue
				}
				if !gatePassed(node, results) {
					results.skip(node.id)
					states[node.id] = stateDone
					progress = true
					continue
				}
				states[node.id] = stateRunning
				if r.stepSystem(node, tx, results, &firstErr) {
					states[node.id] = stateDone
				}
				progress = true
			}

			r.pool.Tick()
		}
		if !progress {
			break
		}
	}

	cmds.apply(store)

	return &TickResults{values: results.drain()}, firstErr
}

// stepSystem resumes a system once. On completion its result slot is
// written even when the body errored, so dependents stay schedulable.
// Returns true when the system finished.
func (r *SerialRunner) stepSystem(node *systemNode, tx *Tx, results *resultsStore, firstErr *error) bool {
	value, done, err := node.sys.RunStep(tx)
	if !done {
		return false
	}
	if err != nil {
		if *firstErr == nil {
			*firstErr = eris.Wrapf(err, "system %s failed", node.name)
		}
		results.store(node.id, nil)
		return true
	}
	results.store(node.id, value)
	return true
}

// ready returns true once every predecessor's result slot has been written,
// successfully or skipped. The slot write is the sole completion signal.
func ready(node *systemNode, results *resultsStore) bool {
	ok := true
	node.preds.Range(func(x uint32) {
		if !results.written(SystemID(x)) {
			ok = false
		}
	})
	return ok
}
