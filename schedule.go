package tempo

import (
	"fmt"

	"github.com/kelindar/bitmap"
)

// SystemID identifies a system within its Schedule. IDs are dense indices
// assigned in registration order.
type SystemID int

// ConditionMode selects how multiple run conditions combine.
type ConditionMode int

const (
	// All gates the system on every condition passing.
	All ConditionMode = iota

	// Any gates the system on at least one condition passing.
	Any
)

// String returns the string representation of the mode.
func (m ConditionMode) String() string {
	switch m {
	case All:
		return "All"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

// System is the unit of work registered on a Schedule. RunStep advances the
// system and is invoked repeatedly until done; the final value is stored as
// the system's result for the tick. Between resumes the runner is free to
// advance background tasks or other systems, so long-running systems should
// return done=false at natural pause points.
type System interface {
	RunStep(tx *Tx) (value any, done bool, err error)
}

// SystemFunc adapts a run-to-completion function to the System interface.
type SystemFunc func(tx *Tx) (any, error)

// RunStep implements System. It finishes on the first resume.
func (f SystemFunc) RunStep(tx *Tx) (any, bool, error) {
	v, err := f(tx)
	return v, true, err
}

// systemNode is the registered form of a system: its access declaration,
// predecessor set and condition wiring. Immutable after registration.
type systemNode struct {
	id     SystemID
	name   string
	sys    System
	access *Access

	// preds is the full predecessor set over system indices: explicit After
	// edges, condition systems, and conflict-derived edges against every
	// earlier registrant with overlapping access.
	preds bitmap.Bitmap

	conds    []SystemID
	condMode ConditionMode
}

// SystemOption configures a system at registration time.
type SystemOption func(*systemNode)

// WithAccess attaches the system's access declaration. Systems registered
// without one are treated as conflicting with nothing.
func WithAccess(a *Access) SystemOption {
	return func(n *systemNode) {
		n.access = a
	}
}

// After orders the system behind the given systems regardless of access
// conflicts.
func After(ids ...SystemID) SystemOption {
	return func(n *systemNode) {
		for _, id := range ids {
			n.preds.Set(uint32(id))
		}
	}
}

// RunIf gates the system's body on the results of the given condition
// systems, combined with mode. A condition passes when its result slot
// holds true this tick; skipped or absent results never pass.
func RunIf(mode ConditionMode, conds ...SystemID) SystemOption {
	return func(n *systemNode) {
		n.condMode = mode
		n.conds = append(n.conds, conds...)
		// Conditions must have finished before the gate can be evaluated.
		for _, id := range conds {
			n.preds.Set(uint32(id))
		}
	}
}

// Schedule is the ordered container of systems executed each tick. Systems
// are registered once; the schedule is immutable during a run.
//
// Ordering is conservative: two systems whose access declarations conflict
// are serialized in registration order, never reordered. Non-conflicting
// systems carry no implicit edge and may run concurrently under the
// parallel runner.
type Schedule struct {
	registry *TypeRegistry
	nodes    []*systemNode
	byName   map[string]SystemID
}

// NewSchedule creates an empty schedule bound to a type registry.
func NewSchedule(reg *TypeRegistry) *Schedule {
	return &Schedule{
		registry: reg,
		byName:   make(map[string]SystemID),
	}
}

// Add registers a system and returns its ID. Option references to systems
// that are not yet registered panic: forward edges would deadlock the
// runner, so they are rejected at registration.
func (s *Schedule) Add(name string, sys System, opts ...SystemOption) SystemID {
	if _, exists := s.byName[name]; exists {
		panic(fmt.Sprintf("tempo: system %q registered twice", name))
	}

	node := &systemNode{
		id:   SystemID(len(s.nodes)),
		name: name,
		sys:  sys,
	}
	for _, opt := range opts {
		opt(node)
	}
	if node.access == nil {
		node.access = NewAccess(s.registry)
	}

	// Every option-declared predecessor must already exist.
	node.preds.Range(func(x uint32) {
		if int(x) >= len(s.nodes) {
			panic(fmt.Sprintf("tempo: system %q references unregistered system %d", name, x))
		}
	})

	// Conflict-derived edges: the earlier registrant is the predecessor.
	for _, prev := range s.nodes {
		if prev.access.ConflictsWith(node.access) {
			node.preds.Set(uint32(prev.id))
		}
	}

	s.nodes = append(s.nodes, node)
	s.byName[name] = node.id
	return node.id
}

// Len returns the number of registered systems.
func (s *Schedule) Len() int {
	return len(s.nodes)
}

// Name returns the registered name of the given system.
func (s *Schedule) Name(id SystemID) string {
	return s.nodes[id].name
}

// ID returns the system registered under name.
func (s *Schedule) ID(name string) (SystemID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// unionMask folds every system's access into one mask of all touched types.
func (s *Schedule) unionMask() Bitmask {
	var mask Bitmask
	for _, node := range s.nodes {
		mask = node.access.union(mask)
	}
	return mask
}

// gatePassed evaluates a node's condition wiring against this tick's
// results. The condition check is type-erased: a condition passed when its
// slot holds the value true.
func gatePassed(node *systemNode, results *resultsStore) bool {
	if len(node.conds) == 0 {
		return true
	}
	switch node.condMode {
	case Any:
		for _, cond := range node.conds {
			if conditionPassed(results, cond) {
				return true
			}
		}
		return false
	default: // All
		for _, cond := range node.conds {
			if !conditionPassed(results, cond) {
				return false
			}
		}
		return true
	}
}

// conditionPassed reads a condition slot without knowing its static type.
// Absent results (skipped or unstarted conditions) never pass; a present
// non-bool result is a wiring bug.
func conditionPassed(results *resultsStore, id SystemID) bool {
	v, ok := results.raw(id)
	if !ok {
		return false
	}
	passed, isBool := v.(bool)
	if !isBool {
		panic(fmt.Sprintf("tempo: condition system %d produced %T, not bool", id, v))
	}
	return passed
}
