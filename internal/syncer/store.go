// Package syncer keeps the cross-feed lookup snapshot fresh: one immediate
// refresh on start, then a fixed-interval loop that republishes the snapshot
// wholesale on every successful cycle.
package syncer

import (
	"sync/atomic"

	"lootshop/internal/reconcile"
)

// Store holds the single published snapshot. Publishing replaces the value by
// reference; readers always see either the previous or the next complete
// snapshot, never a partially updated one, so no lock is needed. Concurrent
// publishers (a page-load refresh racing the timer) are fine: each publishes
// a full replacement and the last one wins.
type Store struct {
	snap atomic.Pointer[reconcile.Snapshot]
}

// NewStore returns a store holding the empty startup snapshot.
func NewStore() *Store {
	s := &Store{}
	s.snap.Store(reconcile.EmptySnapshot())
	return s
}

// Load returns the current snapshot. It never returns nil.
func (s *Store) Load() *reconcile.Snapshot {
	return s.snap.Load()
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap *reconcile.Snapshot) {
	s.snap.Store(snap)
}
