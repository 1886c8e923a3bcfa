package tempo

import (
	"golang.org/x/sync/errgroup"
)

// IoRunner bridges cooperative tasks to a runtime that is allowed to block.
// The compute pool never blocks and never preempts, so real IO must run
// somewhere else; an IoRunner is that somewhere. Results come back through
// IoHandle, which speaks the cooperative Step contract.
type IoRunner interface {
	// Submit schedules run on the backing runtime. If the runtime shuts
	// down before run executes, abandon is called instead (possibly from
	// another goroutine). Submit reports whether the job was accepted; a
	// rejected job has had neither closure called.
	Submit(run, abandon func()) bool
}

// IoRuntime is the native IoRunner: a single worker goroutine draining a
// job queue. One worker is deliberate; IO jobs that need parallelism should
// fan out themselves.
type IoRuntime struct {
	jobs  chan ioJob
	stop  chan struct{}
	group errgroup.Group
}

type ioJob struct {
	run     func()
	abandon func()
}

// NewIoRuntime starts the runtime's worker.
func NewIoRuntime() *IoRuntime {
	rt := &IoRuntime{
		jobs: make(chan ioJob, 64),
		stop: make(chan struct{}),
	}
	rt.group.Go(rt.worker)
	return rt
}

func (rt *IoRuntime) worker() error {
	for {
		select {
		case <-rt.stop:
			// Jobs still queued will never run; settle their handles.
			for {
				select {
				case job := <-rt.jobs:
					job.abandon()
				default:
					return nil
				}
			}
		case job := <-rt.jobs:
			job.run()
		}
	}
}

// Submit implements IoRunner.
func (rt *IoRuntime) Submit(run, abandon func()) bool {
	select {
	case <-rt.stop:
		return false
	default:
	}
	select {
	case rt.jobs <- ioJob{run: run, abandon: abandon}:
		return true
	case <-rt.stop:
		return false
	}
}

// Close stops the worker and abandons queued jobs. Blocks until the worker
// has exited; a job already running finishes first.
func (rt *IoRuntime) Close() {
	select {
	case <-rt.stop:
	default:
		close(rt.stop)
	}
	_ = rt.group.Wait()
}

// ioResult carries an IO job's outcome through its one-shot channel.
type ioResult[T any] struct {
	value T
	err   error
}

// IoHandle is the cooperative view of an IO job running on an IoRunner. It
// is one-shot: the value is consumed by the first successful receive. The
// handle never blocks, so it composes with the compute pool even though the
// real work runs on a different scheduler entirely.
type IoHandle[T any] struct {
	ch       <-chan ioResult[T]
	settled  bool
	consumed bool
	present  bool
	res      ioResult[T]
}

// RunIO spawns fn on the runner and returns a handle that resolves once fn
// completes. If the runner shuts down before fn runs, the handle resolves
// absent.
func RunIO[T any](r IoRunner, fn func() (T, error)) *IoHandle[T] {
	ch := make(chan ioResult[T], 1)
	run := func() {
		v, err := fn()
		ch <- ioResult[T]{value: v, err: err}
		close(ch)
	}
	abandon := func() {
		close(ch)
	}
	if !r.Submit(run, abandon) {
		abandon()
	}
	return &IoHandle[T]{ch: ch}
}

// poll drains the channel without blocking, settling the handle once the
// sender has delivered or gone away.
func (h *IoHandle[T]) poll() {
	if h.settled {
		return
	}
	select {
	case res, ok := <-h.ch:
		h.settled = true
		if ok {
			h.res = res
			h.present = res.err == nil
		}
	default:
	}
}

// TryRecv returns the job's value without blocking. ok is false before the
// job completes, after the value has been consumed, if the job failed, or
// if the runner abandoned the job.
func (h *IoHandle[T]) TryRecv() (T, bool) {
	h.poll()
	var zero T
	if !h.settled || h.consumed || !h.present {
		return zero, false
	}
	h.consumed = true
	return h.res.value, true
}

// Settled returns true once the job has completed, failed, or been
// abandoned.
func (h *IoHandle[T]) Settled() bool {
	h.poll()
	return h.settled
}

// Err returns the job's error once settled. An abandoned job settles with
// no value and no error.
func (h *IoHandle[T]) Err() error {
	h.poll()
	return h.res.err
}

// Resume implements the Step contract: suspended until the job settles,
// then done with the job's value and error. This is what lets a compute
// task await IO by polling its handle at each resume.
func (h *IoHandle[T]) Resume() (any, bool, error) {
	h.poll()
	if !h.settled {
		return nil, false, nil
	}
	if !h.present {
		return nil, true, h.res.err
	}
	return h.res.value, true, h.res.err
}
