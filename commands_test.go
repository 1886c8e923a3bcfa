package tempo

import (
	"testing"
)

func TestCommandsApplyInPushOrder(t *testing.T) {
	c := NewCommandCollector()
	store := newMemStore()
	var order []int

	for i := 0; i < 5; i++ {
		c.Push(func(Store) { order = append(order, i) })
	}
	if c.Len() != 5 {
		t.Fatalf("expected 5 queued commands, got %d", c.Len())
	}

	c.apply(store)

	for i, got := range order {
		if got != i {
			t.Fatalf("commands applied out of push order: %v", order)
		}
	}
	if c.Len() != 0 {
		t.Error("apply must drain the collector")
	}
}

func TestCommandsReceiveStore(t *testing.T) {
	reg := NewTypeRegistry()
	key := KeyFor[FrameClock](reg)
	c := NewCommandCollector()
	store := newMemStore()

	c.Push(func(s Store) { s.SetResource(key, &FrameClock{Tick: 9}) })
	c.apply(store)

	v, ok := store.Resource(key)
	if !ok || v.(*FrameClock).Tick != 9 {
		t.Error("command must mutate the store it is applied to")
	}
}
