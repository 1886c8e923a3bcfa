package tempo

import (
	"fmt"
)

// resultState tracks the lifecycle of a single result slot.
type resultState uint8

const (
	slotEmpty resultState = iota
	slotDone
	slotSkipped
)

// resultsStore holds each system's return value for one tick. It has one
// slot per registered system and every slot is written at most once: a
// second write means a system ran twice, which is a scheduler bug.
//
// Slots are only written from the scheduler goroutine (workers report
// completion over the event channel), so no locking is needed. The write to
// a slot is the completion signal dependents wait on; there is no separate
// barrier.
type resultsStore struct {
	slots []resultSlot
}

type resultSlot struct {
	state resultState
	value any
}

// newResultsStore allocates a store with one empty slot per system.
func newResultsStore(count int) *resultsStore {
	return &resultsStore{
		slots: make([]resultSlot, count),
	}
}

// store records a system's result. Panics if the slot was already written.
func (r *resultsStore) store(id SystemID, value any) {
	slot := &r.slots[id]
	if slot.state != slotEmpty {
		panic(fmt.Sprintf("tempo: result slot for system %d written twice", id))
	}
	slot.state = slotDone
	slot.value = value
}

// skip marks a system as gated off this tick. Dependents observe the slot
// as written but absent. Panics if the slot was already written.
func (r *resultsStore) skip(id SystemID) {
	slot := &r.slots[id]
	if slot.state != slotEmpty {
		panic(fmt.Sprintf("tempo: result slot for system %d written twice", id))
	}
	slot.state = slotSkipped
}

// written returns true once the slot has been stored or skipped. This is
// the readiness signal for dependents.
func (r *resultsStore) written(id SystemID) bool {
	return r.slots[id].state != slotEmpty
}

// raw returns the slot's value without knowing its type. ok is false for
// empty and skipped slots, and for systems that produced no value.
func (r *resultsStore) raw(id SystemID) (any, bool) {
	slot := &r.slots[id]
	if slot.state != slotDone || slot.value == nil {
		return nil, false
	}
	return slot.value, true
}

// drain extracts every slot value, leaving the store empty. Skipped and
// unstarted systems yield nil entries.
func (r *resultsStore) drain() []any {
	values := make([]any, len(r.slots))
	for i := range r.slots {
		if r.slots[i].state == slotDone {
			values[i] = r.slots[i].value
		}
		r.slots[i] = resultSlot{}
	}
	return values
}

// TickResults carries the results of one completed run. It supports
// "reuse previous result" schemes where a gated-off system's dependents
// fall back to last tick's value.
type TickResults struct {
	values []any
}

// Value returns the result produced by the given system this tick. ok is
// false if the system was skipped, never started, or returned nil.
func (t *TickResults) Value(id SystemID) (any, bool) {
	if int(id) >= len(t.values) || t.values[id] == nil {
		return nil, false
	}
	return t.values[id], true
}

// ResultValue returns the typed result produced by the given system.
// Panics if the stored value is present but not of type T: asking for the
// wrong type is a bug, not a runtime condition.
func ResultValue[T any](t *TickResults, id SystemID) (T, bool) {
	var zero T
	v, ok := t.Value(id)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("tempo: result for system %d is %T, not %T", id, v, zero))
	}
	return typed, true
}
