package tempo

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// runnerEvent is the single multiplexed event type shared by all workers
// and the scheduler thread. Exactly one field is set: a system completion
// or a main-thread work request. One channel for both is what lets the
// scheduler thread service main-thread-only resources while systems are
// still in flight.
type runnerEvent struct {
	done *systemDone
	work *mainWork
}

// systemDone reports a worker's system finishing, successfully or not.
type systemDone struct {
	id    SystemID
	value any
	err   error
}

// ParallelRunner executes ready systems on their own goroutines, guarded by
// the per-type WorldLocks layer. Systems whose access declarations conflict
// also carry an ordering edge, so the locks are a second line of defense;
// they exist because explicit edges only serialize systems the schedule
// knows conflict, while locks also catch overlap among systems started in
// the same wave.
type ParallelRunner struct {
	cfg  *Config
	pool *ComputePool
	main *MainThreadResources
}

// NewParallelRunner creates a parallel runner. cfg may be nil for defaults;
// pool may be nil if no background tasks are used.
func NewParallelRunner(cfg *Config, pool *ComputePool, main *MainThreadResources) *ParallelRunner {
	if pool == nil {
		pool = NewComputePool()
	}
	return &ParallelRunner{
		cfg:  cfg.normalized(),
		pool: pool,
		main: main,
	}
}

// Pool returns the compute pool this runner ticks while waiting on events.
func (r *ParallelRunner) Pool() *ComputePool {
	return r.pool
}

// Run executes one tick of the schedule against the store.
//
// Before execution a WorldLocks table is built over the union of all
// registered types. Each ready system runs on its own goroutine; the worker
// acquires the system's planned lock set, drives the system to completion,
// releases, and reports back over the event channel. The calling goroutine
// is the scheduler thread: it stores results, starts newly ready systems,
// services main-thread work requests, and ticks the compute pool whenever
// the event channel stays quiet for the configured poll interval.
func (r *ParallelRunner) Run(store Store, schedule *Schedule) (*TickResults, error) {
	n := schedule.Len()
	results := newResultsStore(n)
	cmds := NewCommandCollector()
	locks := newWorldLocks(schedule)

	// Buffered so workers can always post their completion without the
	// scheduler thread being parked on the receive.
	events := make(chan runnerEvent, 2*n+16)
	tx := &Tx{
		store:    store,
		cmds:     cmds,
		results:  results,
		schedule: schedule,
		main:     &MainThreadDispatcher{events: events},
	}

	// Readiness bookkeeping: indegree per system plus the reverse edges.
	indegree := make([]int, n)
	dependents := make([][]SystemID, n)
	var ready []SystemID
	for _, node := range schedule.nodes {
		indegree[node.id] = node.preds.Count()
		node.preds.Range(func(x uint32) {
			dependents[x] = append(dependents[x], node.id)
		})
		if indegree[node.id] == 0 {
			ready = append(ready, node.id)
		}
	}

	var (
		wg           sync.WaitGroup
		running      int
		budgetLogged bool
		firstErr     error
	)
	start := time.Now()

	// propagate marks id finished and unblocks its dependents.
	propagate := func(id SystemID) {
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	// startReady launches every ready system, oldest registration first.
	// Gated-off systems are skipped inline; the budget blocks new starts
	// but never touches systems already in flight.
	var startReady func()
	startReady = func() {
		for len(ready) > 0 {
			if r.cfg.TimeBudget > 0 && time.Since(start) > r.cfg.TimeBudget {
				if !budgetLogged {
					slog.Debug("tempo: time budget exceeded, deferring remaining systems",
						"budget", r.cfg.TimeBudget, "deferred", len(ready))
					budgetLogged = true
				}
				return
			}
			id := ready[0]
			ready = ready[1:]
			node := schedule.nodes[id]

			if !gatePassed(node, results) {
				results.skip(id)
				propagate(id)
				continue
			}

			running++
			wg.Add(1)
			go runWorker(node, tx, locks, events, &wg)
		}
	}

	startReady()
	for running > 0 {
		select {
		case ev := <-events:
			if ev.work != nil {
				ev.work.fn(r.main)
				close(ev.work.done)
				continue
			}
			d := ev.done
			running--
			if d.err != nil {
				if firstErr == nil {
					firstErr = eris.Wrapf(d.err, "system %s failed", schedule.nodes[d.id].name)
				}
				results.store(d.id, nil)
			} else {
				results.store(d.id, d.value)
			}
			propagate(d.id)
			startReady()

		case <-time.After(r.cfg.EventPollInterval):
			r.pool.Tick()
		}
	}
	wg.Wait()

	cmds.apply(store)

	return &TickResults{values: results.drain()}, firstErr
}

// runWorker drives one system to completion under its planned locks.
// Acquisition order is the sorted lock plan; every worker uses the same
// order, so overlapping sets cannot deadlock. The worker holds its locks
// for the whole system body, including any main-thread dispatches.
func runWorker(node *systemNode, tx *Tx, locks *WorldLocks, events chan<- runnerEvent, wg *sync.WaitGroup) {
	defer wg.Done()

	planned := planLocks(node.access.lockRequests())
	locks.acquire(planned)

	var (
		value any
		err   error
	)
	for {
		v, done, e := node.sys.RunStep(tx)
		if done {
			value, err = v, e
			break
		}
	}

	locks.release(planned)
	events <- runnerEvent{done: &systemDone{id: node.id, value: value, err: err}}
}
