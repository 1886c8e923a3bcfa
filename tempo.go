// Package tempo is an in-process system scheduler with fine-grained
// concurrency control for entity-component engines.
//
// Systems declare which component and resource types they read and write;
// tempo decides which systems may run concurrently, in what order, on how
// many goroutines, and how a secondary pool of long-running cooperative
// background tasks is interleaved without blocking the tick.
//
// # Quick Start
//
// Register types and systems once at startup:
//
//	reg := tempo.NewTypeRegistry()
//	schedule := tempo.NewSchedule(reg)
//
//	move := schedule.Add("move", tempo.SystemFunc(moveBodies),
//	    tempo.WithAccess(tempo.AddWrite[Position](tempo.AddRead[Velocity](tempo.NewAccess(reg)))))
//
//	schedule.Add("render", tempo.SystemFunc(buildDrawList),
//	    tempo.WithAccess(tempo.AddRead[Position](tempo.NewAccess(reg))),
//	    tempo.After(move))
//
// Then run a tick on either strategy:
//
//	runner := tempo.NewParallelRunner(nil, nil, nil)
//	results, err := runner.Run(store, schedule)
//
// # Conflict rules
//
// Two systems conflict when either one writes a type the other reads or
// writes, checked independently for components and resources. Conflicting
// systems are serialized in registration order; under the parallel runner a
// per-type lock layer additionally guarantees their execution intervals
// never overlap. Two read-only systems never conflict and may always run
// concurrently.
//
// # Background work
//
// The ComputePool runs cooperative tasks (Step implementations) between
// system resumes, ordered by priority. Tasks pause at Yield and Checkpoint
// points; Checkpoint also observes the task's CancellationToken. Real IO
// goes through an IoRunner, which executes on a genuine blocking-capable
// runtime and reports back through a channel-backed IoHandle.
//
// # Error discipline
//
// Violations of the scheduler's own invariants - a result slot written
// twice, a typed result lookup with the wrong type, a missing main-thread
// resource - panic. Cancellation and shutdown pressure are ordinary error
// values (ErrCancelled, ShutdownError). An exceeded time budget is not an
// error; it silently defers unstarted systems to the next tick.
package tempo

// Version is the tempo version.
const Version = "1.0.0"
