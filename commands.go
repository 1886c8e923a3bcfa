package tempo

import (
	"sync"
)

// CommandCollector queues mutations recorded while systems run. Structural
// changes to the store must not happen mid-tick, so systems push closures
// here and the runner applies them, in push order, once every system of the
// tick has finished.
type CommandCollector struct {
	mu   sync.Mutex
	cmds []func(Store)
}

// NewCommandCollector creates an empty collector.
func NewCommandCollector() *CommandCollector {
	return &CommandCollector{}
}

// Push queues a deferred mutation. Safe to call from any system on any
// goroutine.
func (c *CommandCollector) Push(fn func(Store)) {
	c.mu.Lock()
	c.cmds = append(c.cmds, fn)
	c.mu.Unlock()
}

// Len returns the number of queued commands.
func (c *CommandCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cmds)
}

// drain removes and returns all queued commands in push order.
func (c *CommandCollector) drain() []func(Store) {
	c.mu.Lock()
	cmds := c.cmds
	c.cmds = nil
	c.mu.Unlock()
	return cmds
}

// apply drains the collector and runs every command against the store in
// push order. Called by the runners after the last system finishes.
func (c *CommandCollector) apply(store Store) {
	for _, fn := range c.drain() {
		fn(store)
	}
}
