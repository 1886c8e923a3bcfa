package tempo

import (
	"fmt"
)

// MainThreadResources holds resources that may only ever be touched on the
// scheduler thread, typically handles owned by a windowing or graphics
// context. The safety invariant is enforced by protocol, not by the type
// system: the only supported accessor path is a closure passed to
// Tx.OnMain, which the runners guarantee executes on the scheduler thread.
// Nothing here locks.
type MainThreadResources struct {
	reg    *TypeRegistry
	values map[TypeKey]any
}

// NewMainThreadResources creates an empty resource map bound to a registry.
func NewMainThreadResources(reg *TypeRegistry) *MainThreadResources {
	return &MainThreadResources{
		reg:    reg,
		values: make(map[TypeKey]any),
	}
}

// PutMainResource registers a main-thread-only resource. Call during setup,
// on the thread that owns the resource.
func PutMainResource[T any](m *MainThreadResources, value *T) {
	m.values[KeyFor[T](m.reg)] = value
}

// MainResource returns the registered resource of type T. A missing
// resource is a wiring bug and panics: systems declare what they need, they
// do not probe for it.
func MainResource[T any](m *MainThreadResources) *T {
	key := KeyFor[T](m.reg)
	v, ok := m.values[key]
	if !ok {
		var zero T
		panic(fmt.Sprintf("tempo: main-thread resource %T not registered", zero))
	}
	return v.(*T)
}

// inlineDispatch services main-thread work on the calling goroutine. Used
// by the serial runner, where the system already runs on the scheduler
// thread.
type inlineDispatch struct {
	res *MainThreadResources
}

func (d inlineDispatch) sendWork(fn func(res *MainThreadResources)) {
	fn(d.res)
}

// MainThreadDispatcher routes closures from worker goroutines to the
// scheduler thread over the runner's event channel, blocking the caller on
// a private reply channel until the closure has run.
type MainThreadDispatcher struct {
	events chan<- runnerEvent
}

func (d *MainThreadDispatcher) sendWork(fn func(res *MainThreadResources)) {
	done := make(chan struct{})
	d.events <- runnerEvent{work: &mainWork{fn: fn, done: done}}
	<-done
}

// mainWork is a main-thread execution request carried on the runner's event
// channel alongside system completions.
type mainWork struct {
	fn   func(res *MainThreadResources)
	done chan struct{}
}
