package tempo

import (
	"testing"
)

func noopSystem(tx *Tx) (any, error) { return nil, nil }

func TestScheduleConflictEdges(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)

	writer := s.Add("writer", SystemFunc(noopSystem),
		WithAccess(AddWrite[compA](NewAccess(reg))))
	reader := s.Add("reader", SystemFunc(noopSystem),
		WithAccess(AddRead[compA](NewAccess(reg))))
	other := s.Add("other", SystemFunc(noopSystem),
		WithAccess(AddRead[compB](NewAccess(reg))))

	if !s.nodes[reader].preds.Contains(uint32(writer)) {
		t.Error("conflicting later registrant must depend on the earlier one")
	}
	if s.nodes[writer].preds.Contains(uint32(reader)) {
		t.Error("edges must only point backwards in registration order")
	}
	if s.nodes[other].preds.Count() != 0 {
		t.Error("non-conflicting system must carry no implicit edges")
	}
}

func TestScheduleExplicitAfter(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)

	a := s.Add("a", SystemFunc(noopSystem),
		WithAccess(AddRead[compA](NewAccess(reg))))
	b := s.Add("b", SystemFunc(noopSystem),
		WithAccess(AddRead[compB](NewAccess(reg))),
		After(a))

	if !s.nodes[b].preds.Contains(uint32(a)) {
		t.Error("explicit After edge missing")
	}
}

func TestScheduleDuplicateNamePanics(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)
	s.Add("sys", SystemFunc(noopSystem))

	if !mustPanic(func() { s.Add("sys", SystemFunc(noopSystem)) }) {
		t.Error("registering the same name twice must panic")
	}
}

func TestScheduleForwardReferencePanics(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)

	if !mustPanic(func() {
		s.Add("early", SystemFunc(noopSystem), After(SystemID(3)))
	}) {
		t.Error("After with an unregistered system must panic")
	}
	if !mustPanic(func() {
		s.Add("gated", SystemFunc(noopSystem), RunIf(All, SystemID(7)))
	}) {
		t.Error("RunIf with an unregistered condition must panic")
	}
}

func TestScheduleNameLookup(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)

	id := s.Add("move", SystemFunc(noopSystem))
	if s.Name(id) != "move" {
		t.Errorf("expected name move, got %s", s.Name(id))
	}
	if got, ok := s.ID("move"); !ok || got != id {
		t.Error("ID lookup by name failed")
	}
	if _, ok := s.ID("missing"); ok {
		t.Error("lookup of an unregistered name must fail")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 system, got %d", s.Len())
	}
}

func TestGatePassedModes(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)
	c1 := s.Add("c1", SystemFunc(noopSystem))
	c2 := s.Add("c2", SystemFunc(noopSystem))
	all := s.Add("all", SystemFunc(noopSystem), RunIf(All, c1, c2))
	anyOf := s.Add("any", SystemFunc(noopSystem), RunIf(Any, c1, c2))

	results := newResultsStore(s.Len())
	results.store(c1, true)
	results.store(c2, false)

	if gatePassed(s.nodes[all], results) {
		t.Error("All gate with a failing condition must not pass")
	}
	if !gatePassed(s.nodes[anyOf], results) {
		t.Error("Any gate with a passing condition must pass")
	}
}

func TestGateSkippedConditionNeverPasses(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)
	c := s.Add("cond", SystemFunc(noopSystem))
	gated := s.Add("gated", SystemFunc(noopSystem), RunIf(Any, c))

	results := newResultsStore(s.Len())
	results.skip(c)

	if gatePassed(s.nodes[gated], results) {
		t.Error("a skipped condition must count as not passing")
	}
}

func TestGateNonBoolConditionPanics(t *testing.T) {
	reg := NewTypeRegistry()
	s := NewSchedule(reg)
	c := s.Add("cond", SystemFunc(noopSystem))
	gated := s.Add("gated", SystemFunc(noopSystem), RunIf(All, c))

	results := newResultsStore(s.Len())
	results.store(c, 42)

	if !mustPanic(func() { gatePassed(s.nodes[gated], results) }) {
		t.Error("a non-bool condition result must panic")
	}
}
