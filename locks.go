package tempo

import (
	"sort"
	"sync"
)

// WorldLocks is the per-type RWMutex layer used only by the parallel
// runner. The locks carry no data; the store's contents live elsewhere.
// They exist purely so two systems with overlapping access can never be
// mid-execution at the same time.
//
// Built once before a run from the union of every type the schedule
// touches; stateless across ticks.
type WorldLocks struct {
	locks map[TypeKey]*sync.RWMutex
}

// newWorldLocks builds the lock table for a schedule.
func newWorldLocks(s *Schedule) *WorldLocks {
	mask := s.unionMask()
	locks := make(map[TypeKey]*sync.RWMutex, mask.Count())
	for _, key := range mask.Keys() {
		locks[key] = new(sync.RWMutex)
	}
	return &WorldLocks{locks: locks}
}

// lockRequest pairs a type key with the lock mode it needs.
type lockRequest struct {
	key   TypeKey
	write bool
}

// planLocks normalizes a request list into acquisition order: duplicates
// are removed with write access taking priority over read, and the result
// is sorted by key. Every worker acquiring overlapping sets in the same
// relative order is what makes deadlock impossible.
func planLocks(reqs []lockRequest) []lockRequest {
	var reads, writes Bitmask
	for _, req := range reqs {
		if req.write {
			writes.Set(req.key)
		} else {
			reads.Set(req.key)
		}
	}
	reads = reads.AndNot(writes)

	planned := make([]lockRequest, 0, reads.Count()+writes.Count())
	for _, key := range writes.Keys() {
		planned = append(planned, lockRequest{key: key, write: true})
	}
	for _, key := range reads.Keys() {
		planned = append(planned, lockRequest{key: key})
	}
	sort.Slice(planned, func(i, j int) bool {
		return planned[i].key < planned[j].key
	})
	return planned
}

// acquire takes every planned lock in order. The plan must come from
// planLocks.
func (w *WorldLocks) acquire(planned []lockRequest) {
	for _, req := range planned {
		if req.write {
			w.locks[req.key].Lock()
		} else {
			w.locks[req.key].RLock()
		}
	}
}

// release drops the locks in reverse acquisition order.
func (w *WorldLocks) release(planned []lockRequest) {
	for i := len(planned) - 1; i >= 0; i-- {
		req := planned[i]
		if req.write {
			w.locks[req.key].Unlock()
		} else {
			w.locks[req.key].RUnlock()
		}
	}
}
