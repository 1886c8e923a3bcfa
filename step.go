package tempo

import (
	"sync/atomic"
)

// Step is a resumable cooperative computation. Resume advances it by one
// unit of work; done reports completion and value carries the final result
// once done. A Step is never resumed again after reporting done.
//
// Resume is always called from the scheduler goroutine that owns the step,
// so implementations do not need to be thread-safe.
type Step interface {
	Resume() (value any, done bool, err error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc func() (any, bool, error)

// Resume calls f.
func (f StepFunc) Resume() (any, bool, error) {
	return f()
}

// Complete wraps a run-to-completion function as a Step that finishes on its
// first resume.
func Complete(fn func() (any, error)) Step {
	return StepFunc(func() (any, bool, error) {
		v, err := fn()
		return v, true, err
	})
}

// CancellationToken is a shared cancellation flag. Copies of a token refer
// to the same flag, so cancelling any copy cancels them all. Setting the
// flag never interrupts a task; it is observed at the task's next
// checkpoint.
type CancellationToken struct {
	flag *atomic.Bool
}

// NewCancellationToken creates an unset token.
func NewCancellationToken() CancellationToken {
	return CancellationToken{flag: new(atomic.Bool)}
}

// Cancel sets the flag. Safe to call from any goroutine, any number of
// times.
func (t CancellationToken) Cancel() {
	t.flag.Store(true)
}

// Cancelled returns true once the flag has been set.
func (t CancellationToken) Cancelled() bool {
	return t.flag.Load()
}

// Err returns ErrCancelled once the flag has been set, nil otherwise.
func (t CancellationToken) Err() error {
	if t.flag.Load() {
		return ErrCancelled
	}
	return nil
}

// Yield is the minimal cooperative pause: suspended on its first resume and
// done on every resume after that.
type Yield struct {
	polled bool
}

// Resume implements Step.
func (y *Yield) Resume() (any, bool, error) {
	if !y.polled {
		y.polled = true
		return nil, false, nil
	}
	return nil, true, nil
}

// Checkpoint composes a yield with a cancellation check. The check runs
// before delegating to the yield, so a cancelled token is observed on the
// next resume rather than after the yield interval.
type Checkpoint struct {
	token CancellationToken
	yield Yield
}

// NewCheckpoint creates a checkpoint bound to the given token.
func NewCheckpoint(token CancellationToken) *Checkpoint {
	return &Checkpoint{token: token}
}

// Resume implements Step. It resolves ErrCancelled if the token is set,
// otherwise it behaves like Yield.
func (c *Checkpoint) Resume() (any, bool, error) {
	if err := c.token.Err(); err != nil {
		return nil, true, err
	}
	return c.yield.Resume()
}
