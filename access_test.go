package tempo

import (
	"math/rand"
	"testing"
)

type compA struct{ _ int }
type compB struct{ _ int }
type compC struct{ _ int }
type resA struct{ _ int }

func TestConflictReadWrite(t *testing.T) {
	reg := NewTypeRegistry()

	reader := AddRead[compA](NewAccess(reg))
	writer := AddWrite[compA](NewAccess(reg))

	if !reader.ConflictsWith(writer) {
		t.Error("read+write on the same type must conflict")
	}
	if !writer.ConflictsWith(writer) {
		t.Error("write+write on the same type must conflict")
	}
}

func TestNoConflictReadOnly(t *testing.T) {
	reg := NewTypeRegistry()

	a := AddRead[compA](AddRead[compB](NewAccess(reg)))
	b := AddRead[compA](AddRead[compC](NewAccess(reg)))

	if a.ConflictsWith(b) {
		t.Error("two read-only descriptors must never conflict")
	}
	if !a.IsReadOnly() || !b.IsReadOnly() {
		t.Error("descriptors without writes must report read-only")
	}
}

func TestNoConflictDisjoint(t *testing.T) {
	reg := NewTypeRegistry()

	a := AddWrite[compA](NewAccess(reg))
	b := AddWrite[compB](NewAccess(reg))

	if a.ConflictsWith(b) {
		t.Error("descriptors over disjoint types must never conflict")
	}
}

func TestComponentAndResourceSpacesIndependent(t *testing.T) {
	reg := NewTypeRegistry()

	// Same Go type, one side uses it as a component, the other as a
	// resource. The spaces are tracked separately so this must not
	// conflict.
	a := AddWrite[compA](NewAccess(reg))
	b := AddResourceWrite[compA](NewAccess(reg))

	if a.ConflictsWith(b) {
		t.Error("component and resource spaces must be independent")
	}

	c := AddResourceRead[resA](NewAccess(reg))
	d := AddResourceWrite[resA](NewAccess(reg))
	if !c.ConflictsWith(d) {
		t.Error("resource read vs resource write must conflict")
	}
}

func TestConflictSymmetry(t *testing.T) {
	reg := NewTypeRegistry()
	keys := make([]TypeKey, 12)
	for i := range keys {
		keys[i] = TypeKey(i)
	}
	rng := rand.New(rand.NewSource(7))
	randomAccess := func() *Access {
		a := NewAccess(reg)
		for _, key := range keys {
			switch rng.Intn(4) {
			case 0:
				a.ReadKey(key)
			case 1:
				a.WriteKey(key)
			case 2:
				a.ResourceReadKey(key)
			}
		}
		return a
	}

	for trial := 0; trial < 200; trial++ {
		a, b := randomAccess(), randomAccess()
		if a.ConflictsWith(b) != b.ConflictsWith(a) {
			t.Fatalf("conflict test not symmetric on trial %d", trial)
		}
	}
}

func TestBitmaskKeysSorted(t *testing.T) {
	var m Bitmask
	for _, key := range []TypeKey{200, 3, 64, 63, 127, 0} {
		m.Set(key)
	}

	keys := m.Keys()
	want := []TypeKey{0, 3, 63, 64, 127, 200}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i, key := range want {
		if keys[i] != key {
			t.Errorf("key %d: expected %d, got %d", i, key, keys[i])
		}
	}
}

func TestRegistryIssuesDenseKeys(t *testing.T) {
	reg := NewTypeRegistry()

	a := KeyFor[compA](reg)
	b := KeyFor[compB](reg)
	again := KeyFor[compA](reg)

	if a == b {
		t.Error("distinct types must get distinct keys")
	}
	if a != again {
		t.Error("repeated registration must return the same key")
	}
	if reg.Count() != 2 {
		t.Errorf("expected 2 registered types, got %d", reg.Count())
	}

	other := NewTypeRegistry()
	if KeyFor[compB](other) == b && other.Count() != reg.Count() {
		t.Error("registries must issue keys independently")
	}
}
