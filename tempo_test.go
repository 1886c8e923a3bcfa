package tempo

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Shared test fixtures: a minimal in-memory store and a few component and
// resource types. The store mirrors what a real engine-side container
// exposes to the scheduler, nothing more.

// Position is a test component.
type Position struct {
	Vec mgl64.Vec2
}

// Velocity is a test component.
type Velocity struct {
	Vec mgl64.Vec2
}

// FrameClock is a test resource.
type FrameClock struct {
	Tick uint64
}

type memColumn struct {
	items []any
}

func (c *memColumn) Len() int             { return len(c.items) }
func (c *memColumn) At(i int) any         { return c.items[i] }
func (c *memColumn) Set(i int, value any) { c.items[i] = value }

type memStore struct {
	columns   map[TypeKey]*memColumn
	resources map[TypeKey]any
}

func newMemStore() *memStore {
	return &memStore{
		columns:   make(map[TypeKey]*memColumn),
		resources: make(map[TypeKey]any),
	}
}

func (s *memStore) Column(key TypeKey) Column {
	col, ok := s.columns[key]
	if !ok {
		return nil
	}
	return col
}

func (s *memStore) Resource(key TypeKey) (any, bool) {
	v, ok := s.resources[key]
	return v, ok
}

func (s *memStore) SetResource(key TypeKey, value any) {
	s.resources[key] = value
}

// addColumn seeds a component column in registration order of instances.
func (s *memStore) addColumn(key TypeKey, items ...any) {
	s.columns[key] = &memColumn{items: items}
}

// mustPanic runs fn and reports whether it panicked.
func mustPanic(fn func()) (panicked bool) {
	defer func() {
		if recover() != nil {
			panicked = true
		}
	}()
	fn()
	return false
}
