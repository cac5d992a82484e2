package store

import (
	"sync"
	"time"

	"schedarr/internal/model"
)

// Snapshot is one consistent set of upstream data. The store keeps the last
// committed snapshot as the view state's single source of truth; a failed
// refresh never clears it.
type Snapshot struct {
	Events      []model.Event
	Recordings  []model.Recording
	Occurrences []model.ScheduledItem // expanded series occurrences
	Skipped     int                   // upstream records dropped for bad timestamps
	FetchedAt   time.Time
}

// Store holds the last committed snapshot guarded by a monotonically
// increasing refresh sequence. Concurrent refreshes race by design (cron vs.
// manual trigger); only the most recently begun refresh may commit, so a
// slow older fetch can never clobber fresher data.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	committed bool
	lastBegun uint64
	lastDone  uint64
}

func New() *Store {
	return &Store{}
}

// Begin registers a refresh attempt and returns its sequence token.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBegun++
	return s.lastBegun
}

// Commit installs snap if seq is still the highest-begun sequence. It
// reports whether the snapshot was accepted; a rejected commit means a newer
// refresh began while this one was in flight.
func (s *Store) Commit(seq uint64, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.lastBegun || seq <= s.lastDone {
		return false
	}
	s.snap = snap
	s.committed = true
	s.lastDone = seq
	return true
}

// Snapshot returns the last committed snapshot. ok is false before the first
// successful refresh, where an empty view is the correct representation.
func (s *Store) Snapshot() (snap Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.committed
}

// Items merges events, recordings and expanded series occurrences into the
// flat slice the bucketer consumes. The result is a fresh slice on every
// call; callers may reorder it freely.
func (s *Store) Items() []model.ScheduledItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.ScheduledItem, 0, len(s.snap.Events)+len(s.snap.Recordings)+len(s.snap.Occurrences))
	for _, e := range s.snap.Events {
		items = append(items, e.ScheduledItem())
	}
	for _, r := range s.snap.Recordings {
		items = append(items, r.ScheduledItem())
	}
	items = append(items, s.snap.Occurrences...)
	return items
}

// Age reports how stale the committed snapshot is. Zero when nothing has
// been committed yet.
func (s *Store) Age(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.committed || s.snap.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.snap.FetchedAt)
}
