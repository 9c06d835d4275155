package vectorindex

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

// Stats is an immutable snapshot of a statsTracker, safe to hand to
// callers without exposing the lock.
type Stats struct {
	BuildID                   string
	VectorCount               uint64
	MemoryUsage               uint64
	BuildTimeMs               *uint64
	AvgSearchTimeUs           *float64
	SearchCount               uint64
	BruteForceSearches        uint64
	PostFilterSearches        uint64
	PreFilterSearches         uint64
	TotalBruteForceCandidates uint64
	ExpansionFactorSum        float64
	ExpansionFactorCount      uint64
	AvgExpansionFactor        float64
	MaxExpansionFactor        uint64
	MinExpansionFactor        uint64 // undefined (math.MaxUint64 sentinel, see updateExpansionFactor) until the first sample
}

// statsTracker accumulates the counters and expansion-factor
// distribution behind a reader-writer lock, per the adapter's
// single-writer-many-readers policy. A poisoned lock must never fail a
// search, so every search-path mutator recovers from a panicking lock
// and simply skips the update; build-path mutators let a poisoned lock
// panic through, since that is a fatal programmer error.
type statsTracker struct {
	mu sync.RWMutex
	s  Stats
}

func newStatsTracker() *statsTracker {
	return &statsTracker{}
}

// Snapshot returns a copy of the current counters.
func (t *statsTracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := t.s
	if t.s.BuildTimeMs != nil {
		v := *t.s.BuildTimeMs
		snap.BuildTimeMs = &v
	}
	if t.s.AvgSearchTimeUs != nil {
		v := *t.s.AvgSearchTimeUs
		snap.AvgSearchTimeUs = &v
	}
	return snap
}

// recordBuild resets the distribution for a fresh build and stamps a new
// BuildID. It is called on the build path, where a poisoned lock is
// fatal, so no recover() guards this one.
func (t *statsTracker) recordBuild(vectorCount uint64, buildTimeMs uint64, memoryUsage uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s = Stats{
		BuildID:            uuid.NewString(),
		VectorCount:        vectorCount,
		MemoryUsage:        memoryUsage,
		BuildTimeMs:        &buildTimeMs,
		MinExpansionFactor: math.MaxUint64,
	}
}

// setVectorCount updates the live vector count after insert/soft_delete,
// which do not reset the rest of the distribution.
func (t *statsTracker) setVectorCount(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.VectorCount = n
}

// withWriteLock runs fn under the write lock, recovering from a
// poisoned/panicking lock so that search-path counter updates never
// propagate a failure to the caller. Go's sync.RWMutex cannot actually
// become "poisoned" the way a Rust Mutex can, but the recover here keeps
// the contract identical for any future swap to a primitive that can
// (e.g. a process shared across cgo boundaries), and documents the
// intended availability guarantee in one place.
func (t *statsTracker) withWriteLock(fn func(s *Stats)) {
	defer func() { recover() }()
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.s)
}

func (t *statsTracker) incSearchCount() {
	t.withWriteLock(func(s *Stats) { s.SearchCount++ })
}

func (t *statsTracker) incBruteForce(candidates uint64) {
	t.withWriteLock(func(s *Stats) {
		s.BruteForceSearches++
		s.TotalBruteForceCandidates += candidates
	})
}

func (t *statsTracker) incPostFilter(expansionFactor int) {
	t.withWriteLock(func(s *Stats) {
		s.PostFilterSearches++
		updateExpansionFactor(s, expansionFactor)
	})
}

func (t *statsTracker) incPreFilter() {
	t.withWriteLock(func(s *Stats) { s.PreFilterSearches++ })
}

// updateExpansionFactor folds a new sample into the running
// sum/count/avg/min/max, treating MinExpansionFactor's math.MaxUint64
// sentinel as "undefined until the first sample" per the data model.
func updateExpansionFactor(s *Stats, factor int) {
	f := uint64(factor)
	s.ExpansionFactorSum += float64(factor)
	s.ExpansionFactorCount++
	s.AvgExpansionFactor = s.ExpansionFactorSum / float64(s.ExpansionFactorCount)
	if f > s.MaxExpansionFactor {
		s.MaxExpansionFactor = f
	}
	if s.MinExpansionFactor == math.MaxUint64 || f < s.MinExpansionFactor {
		s.MinExpansionFactor = f
	}
}
