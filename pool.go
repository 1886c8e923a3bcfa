package tempo

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ComputePool is a priority-scheduled executor for cooperative background
// tasks. It is independent of the system runners: tasks are not systems,
// declare no access, and make progress only when the pool is ticked.
//
// The pool itself is strictly single-threaded cooperative. Whichever runner
// strategy is active, ticks happen on the scheduler thread; Spawn and
// Cancel may be called from anywhere.
type ComputePool struct {
	mu     sync.Mutex
	queues [priorityCount][]*pooledTask
}

// pooledTask pairs a task's step with the handle its result is delivered
// on.
type pooledTask struct {
	handle *TaskHandle
	step   Step
}

// TaskHandle identifies a spawned task and carries its one-shot result
// channel and cancellation token.
type TaskHandle struct {
	id     uuid.UUID
	token  CancellationToken
	result chan any
	err    atomic.Pointer[error]
	done   atomic.Bool
}

// ID returns the task's identity.
func (h *TaskHandle) ID() uuid.UUID {
	return h.id
}

// Cancel sets the task's cancellation token. The task observes it at its
// next checkpoint; there is no hard kill.
func (h *TaskHandle) Cancel() {
	h.token.Cancel()
}

// Done returns true once the task has finished, including by cancellation.
func (h *TaskHandle) Done() bool {
	return h.done.Load()
}

// Err returns the error the task finished with, if any. ErrCancelled means
// the task observed cancellation and unwound.
func (h *TaskHandle) Err() error {
	if p := h.err.Load(); p != nil {
		return *p
	}
	return nil
}

// TryRecv returns the task's result without blocking. The value is one-shot:
// the first successful receive consumes it.
func (h *TaskHandle) TryRecv() (any, bool) {
	select {
	case v := <-h.result:
		return v, true
	default:
		return nil, false
	}
}

// NewComputePool creates an empty pool.
func NewComputePool() *ComputePool {
	return &ComputePool{}
}

// Spawn enqueues a background task at the given priority. build receives
// the task's cancellation token so the step can close over it for
// checkpoints; the token is also reachable through the returned handle.
func (p *ComputePool) Spawn(pri Priority, build func(token CancellationToken) Step) *TaskHandle {
	if pri < Low || pri >= priorityCount {
		panic("tempo: invalid task priority " + pri.String())
	}

	handle := &TaskHandle{
		id:     uuid.New(),
		token:  NewCancellationToken(),
		result: make(chan any, 1),
	}
	task := &pooledTask{
		handle: handle,
		step:   build(handle.token),
	}

	p.mu.Lock()
	p.queues[pri] = append(p.queues[pri], task)
	p.mu.Unlock()

	return handle
}

// Len returns the number of tasks still in the pool.
func (p *ComputePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for pri := range p.queues {
		n += len(p.queues[pri])
	}
	return n
}

// Tick advances exactly one unit of pending work, choosing the
// highest-priority non-empty queue. A task that suspends goes to the back
// of its queue. Reports whether any work was advanced.
func (p *ComputePool) Tick() bool {
	task, pri := p.pop()
	if task == nil {
		return false
	}

	value, done, err := task.step.Resume()
	if !done {
		p.mu.Lock()
		p.queues[pri] = append(p.queues[pri], task)
		p.mu.Unlock()
		return true
	}

	p.finish(task.handle, value, err)
	return true
}

// TickAll drains every currently-runnable task, driving suspended tasks
// through their yields until the pool is empty.
func (p *ComputePool) TickAll() {
	for p.Tick() {
	}
}

// pop removes the front task of the highest-priority non-empty queue.
func (p *ComputePool) pop() (*pooledTask, Priority) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for pri := priorityCount - 1; pri >= Low; pri-- {
		q := p.queues[pri]
		if len(q) == 0 {
			continue
		}
		task := q[0]
		copy(q, q[1:])
		q[len(q)-1] = nil
		p.queues[pri] = q[:len(q)-1]
		return task, pri
	}
	return nil, Low
}

// finish settles a completed task's handle. A cancelled task is simply
// finished, not a failure.
func (p *ComputePool) finish(h *TaskHandle, value any, err error) {
	if err != nil {
		h.err.Store(&err)
		if errors.Is(err, ErrCancelled) {
			slog.Debug("tempo: background task cancelled", "task", h.id)
		} else {
			slog.Error("tempo: background task failed", "task", h.id, "error", err)
		}
	} else if value != nil {
		h.result <- value
	}
	h.done.Store(true)
}

// cancelAll sets every pending task's token.
func (p *ComputePool) cancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for pri := range p.queues {
		for _, task := range p.queues[pri] {
			task.handle.token.Cancel()
		}
	}
}

// GracefulShutdown cancels every pending task and keeps ticking until the
// pool drains or the budget elapses. Tasks observe cancellation at their
// next checkpoint and unwind; tasks that never checkpoint run to
// completion. If the pool does not drain in time a ShutdownError is
// returned rather than blocking forever or leaking tasks silently.
func (p *ComputePool) GracefulShutdown(budget time.Duration) error {
	p.cancelAll()

	deadline := time.Now().Add(budget)
	for p.Len() > 0 {
		if time.Now().After(deadline) {
			remaining := p.Len()
			slog.Warn("tempo: shutdown budget exceeded", "remaining", remaining)
			return &ShutdownError{Remaining: remaining}
		}
		p.Tick()
	}
	return nil
}
