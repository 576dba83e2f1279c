// Package cache holds the short-TTL categories snapshot used to paint the
// dashboard instantly. It is a latency optimization, never a source of truth:
// callers still issue the full fetch and reconcile afterwards.
package cache

import (
	"sync"
	"time"

	"github.com/hogarhub/core/internal/domain/entities"
)

// DefaultTTL is how long a snapshot is considered fresh.
const DefaultTTL = 60 * time.Second

// Snapshot is the cached category tree with its write timestamp.
type Snapshot struct {
	Data      []entities.Category
	UpdatedAt time.Time
}

// CategoriesStore is a single-slot, time-boxed cache of the category tree.
// The slot is always replaced wholesale with a deep copy, so cached data
// never aliases screen-local state.
type CategoriesStore struct {
	mu   sync.Mutex
	slot *Snapshot
	now  func() time.Time
}

// NewCategoriesStore creates an empty store.
func NewCategoriesStore() *CategoriesStore {
	return &CategoriesStore{now: time.Now}
}

// NewCategoriesStoreAt creates a store with an injected clock for tests.
func NewCategoriesStoreAt(now func() time.Time) *CategoriesStore {
	return &CategoriesStore{now: now}
}

// Set replaces the slot with a deep copy of data and stamps it with now.
func (s *CategoriesStore) Set(data []entities.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = &Snapshot{
		Data:      entities.CloneCategories(data),
		UpdatedAt: s.now(),
	}
}

// Get returns a deep copy of the current snapshot, or ok=false when empty.
func (s *CategoriesStore) Get() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		Data:      entities.CloneCategories(s.slot.Data),
		UpdatedAt: s.slot.UpdatedAt,
	}, true
}

// Fresh reports whether the snapshot was written less than ttl ago.
// Freshness is purely a function of elapsed time since the last Set.
func (s *CategoriesStore) Fresh(ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return false
	}
	return s.now().Sub(s.slot.UpdatedAt) < ttl
}

// Clear empties the slot.
func (s *CategoriesStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = nil
}

// Invalidate drops the snapshot after a mutation known to affect categories,
// forcing the next reader to refetch instead of painting stale data.
func (s *CategoriesStore) Invalidate() {
	s.Clear()
}
