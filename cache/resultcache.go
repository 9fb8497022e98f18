// Package cache implements the at-most-once result cache of component
// design §4.4: a mapping from cache key to either a completed result or a
// pending placeholder that makes other workers wait rather than duplicate
// a network check.
package cache

import (
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	deadlock "github.com/sasha-s/go-deadlock"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// Outcome reports the result of a cache Lookup.
type Outcome int

const (
	// Miss means the caller inserted the pending placeholder and must
	// Deposit a result when the check finishes.
	Miss Outcome = iota
	// Hit means a result (possibly still pending) was already present;
	// Lookup blocks until it completes and returns it.
	Hit
)

// entry is either pending (done == false, cond != nil) or completed.
type entry struct {
	done   bool
	result urlitem.Wire
	cond   *sync.Cond
}

// ResultCache guarantees that at most one network fetch happens per cache
// key (testable property §8.1). Lock discipline follows spec.md §5: the
// mutex is held only over map operations, never across network I/O.
type ResultCache struct {
	mu      deadlock.Mutex
	entries map[string]*entry

	// accel is an optional disk-backed bloom filter fast-reject layer in
	// front of the map, matching the teacher's VisitedTracker. A negative
	// from the filter still consults the map — bloom filters have no
	// false negatives, so this is purely an optimization.
	accel *bloom.BloomFilter
}

// New creates an empty ResultCache. If withAccelerator is true, a bloom
// filter sized for 200,000 keys at a 0.1% false-positive rate fast-rejects
// definitely-unseen keys before taking the map lock.
func New(withAccelerator bool) *ResultCache {
	rc := &ResultCache{entries: make(map[string]*entry)}
	if withAccelerator {
		rc.accel = bloom.NewWithEstimates(200000, 0.001)
	}
	return rc
}

// Lookup implements the three-way protocol of §4.4:
//  1. absent -> insert pending placeholder, return Miss
//  2. pending -> wait on the condition, return Hit with the completed result
//  3. completed -> return Hit immediately
func (rc *ResultCache) Lookup(key string) (Outcome, urlitem.Wire) {
	rc.mu.Lock()
	if rc.accel != nil && !rc.accel.TestString(key) {
		// Definitely never seen: skip straight to inserting the
		// placeholder without a second map probe.
		rc.accel.AddString(key)
		e := &entry{cond: sync.NewCond(&rc.mu)}
		rc.entries[key] = e
		rc.mu.Unlock()
		return Miss, urlitem.Wire{}
	}

	e, ok := rc.entries[key]
	if !ok {
		e = &entry{cond: sync.NewCond(&rc.mu)}
		rc.entries[key] = e
		rc.mu.Unlock()
		return Miss, urlitem.Wire{}
	}
	for !e.done {
		e.cond.Wait()
	}
	result := e.result
	rc.mu.Unlock()
	return Hit, result
}

// Deposit completes the pending placeholder for key with result and wakes
// every waiter. Deposit is idempotent: depositing twice for the same key
// leaves the first result in place and only re-broadcasts, so a racing
// director-side "interrupted" completion (used during shutdown) can never
// clobber a real result that landed first.
func (rc *ResultCache) Deposit(key string, result urlitem.Wire) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	e, ok := rc.entries[key]
	if !ok {
		e = &entry{cond: sync.NewCond(&rc.mu)}
		rc.entries[key] = e
	}
	if e.done {
		return
	}
	e.result = result
	e.done = true
	e.cond.Broadcast()
}

// Len returns the number of keys tracked (completed or pending); used by
// tests and the status reporter.
func (rc *ResultCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// CompletePending finishes every still-pending entry with result. Called
// by the director during shutdown so that any worker blocked in Lookup is
// unblocked rather than left waiting forever (§5: "the pending entry is
// then completed by the director with an interrupted result").
func (rc *ResultCache) CompletePending(result urlitem.Wire) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, e := range rc.entries {
		if !e.done {
			e.result = result
			e.done = true
			e.cond.Broadcast()
		}
	}
}
