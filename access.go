package tempo

// Access declares which component and resource types a system reads and
// writes. The runner uses it for conflict detection (which systems may run
// concurrently) and, in parallel mode, for lock planning.
//
// Component and resource spaces are tracked independently: a component type
// and a resource type never conflict with each other even if they happen to
// be the same Go type.
type Access struct {
	reg *TypeRegistry

	compReads  Bitmask
	compWrites Bitmask
	resReads   Bitmask
	resWrites  Bitmask
}

// NewAccess creates an empty access declaration bound to a registry.
func NewAccess(reg *TypeRegistry) *Access {
	return &Access{reg: reg}
}

// AddRead declares read access to component type T.
func AddRead[T any](a *Access) *Access {
	a.compReads.Set(KeyFor[T](a.reg))
	return a
}

// AddWrite declares write access to component type T.
func AddWrite[T any](a *Access) *Access {
	a.compWrites.Set(KeyFor[T](a.reg))
	return a
}

// AddResourceRead declares read access to resource type T.
func AddResourceRead[T any](a *Access) *Access {
	a.resReads.Set(KeyFor[T](a.reg))
	return a
}

// AddResourceWrite declares write access to resource type T.
func AddResourceWrite[T any](a *Access) *Access {
	a.resWrites.Set(KeyFor[T](a.reg))
	return a
}

// ReadKey declares component read access by key.
func (a *Access) ReadKey(key TypeKey) *Access {
	a.compReads.Set(key)
	return a
}

// WriteKey declares component write access by key.
func (a *Access) WriteKey(key TypeKey) *Access {
	a.compWrites.Set(key)
	return a
}

// ResourceReadKey declares resource read access by key.
func (a *Access) ResourceReadKey(key TypeKey) *Access {
	a.resReads.Set(key)
	return a
}

// ResourceWriteKey declares resource write access by key.
func (a *Access) ResourceWriteKey(key TypeKey) *Access {
	a.resWrites.Set(key)
	return a
}

// ConflictsWith returns true if this access pattern conflicts with another.
// Two systems conflict when either side's writes intersect the other side's
// reads or writes, in the component space or the resource space. The test is
// commutative: a.ConflictsWith(b) == b.ConflictsWith(a).
func (a *Access) ConflictsWith(other *Access) bool {
	if spaceConflicts(a.compReads, a.compWrites, other.compReads, other.compWrites) {
		return true
	}
	return spaceConflicts(a.resReads, a.resWrites, other.resReads, other.resWrites)
}

// spaceConflicts tests one type space. Checked in both directions because
// conflict is defined symmetrically, not as containment.
func spaceConflicts(aReads, aWrites, bReads, bWrites Bitmask) bool {
	if aWrites.Intersects(bReads.Or(bWrites)) {
		return true
	}
	return bWrites.Intersects(aReads.Or(aWrites))
}

// IsReadOnly returns true if the access declares no writes in either space.
func (a *Access) IsReadOnly() bool {
	return a.compWrites.IsZero() && a.resWrites.IsZero()
}

// lockRequests flattens the access into per-type lock requests. The result
// may contain duplicates and is unordered; planLocks normalizes it.
func (a *Access) lockRequests() []lockRequest {
	reqs := make([]lockRequest, 0, a.compReads.Count()+a.compWrites.Count()+a.resReads.Count()+a.resWrites.Count())
	for _, key := range a.compReads.Keys() {
		reqs = append(reqs, lockRequest{key: key})
	}
	for _, key := range a.resReads.Keys() {
		reqs = append(reqs, lockRequest{key: key})
	}
	for _, key := range a.compWrites.Keys() {
		reqs = append(reqs, lockRequest{key: key, write: true})
	}
	for _, key := range a.resWrites.Keys() {
		reqs = append(reqs, lockRequest{key: key, write: true})
	}
	return reqs
}

// union folds this access into the given masks. Used to build WorldLocks
// over every type a schedule can touch.
func (a *Access) union(mask Bitmask) Bitmask {
	return mask.Or(a.compReads).Or(a.compWrites).Or(a.resReads).Or(a.resWrites)
}
