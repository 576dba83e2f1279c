package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hogarhub/core/internal/application/cache"
	"github.com/hogarhub/core/internal/domain/entities"
)

func TestFreshnessBoundary(t *testing.T) {
	current := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	store := cache.NewCategoriesStoreAt(func() time.Time { return current })

	store.Set([]entities.Category{{ID: "c1", Title: "Casa"}})

	current = current.Add(999 * time.Millisecond)
	assert.True(t, store.Fresh(time.Second))

	current = current.Add(2 * time.Millisecond)
	assert.False(t, store.Fresh(time.Second))
}

func TestEmptyStoreIsNeverFresh(t *testing.T) {
	store := cache.NewCategoriesStore()
	assert.False(t, store.Fresh(time.Hour))
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestSetAndGetDoNotAlias(t *testing.T) {
	store := cache.NewCategoriesStore()
	order := 0
	source := []entities.Category{{
		ID:    "c1",
		Tasks: []entities.Task{{ID: "t1", Title: "original", Order: &order}},
	}}

	store.Set(source)
	source[0].Tasks[0].Title = "mutated after set"

	snapshot, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "original", snapshot.Data[0].Tasks[0].Title)

	// Mutating the returned snapshot does not touch the slot either.
	snapshot.Data[0].Tasks[0].Title = "mutated after get"
	again, _ := store.Get()
	assert.Equal(t, "original", again.Data[0].Tasks[0].Title)
}

func TestInvalidateDropsSnapshot(t *testing.T) {
	store := cache.NewCategoriesStore()
	store.Set([]entities.Category{{ID: "c1"}})
	store.Invalidate()

	_, ok := store.Get()
	assert.False(t, ok)
	assert.False(t, store.Fresh(time.Hour))
}
