package alerttypes_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/alertkit/pkg/alerttypes"
)

// countingCache wraps MemoryCache and records traffic so tests can assert
// read-through and write-invalidate behaviour.
type countingCache struct {
	inner  *alerttypes.MemoryCache
	mu     sync.Mutex
	reads  int
	writes int
}

func newCountingCache() *countingCache {
	return &countingCache{inner: alerttypes.NewMemoryCache()}
}

func (c *countingCache) Read(ctx context.Context, key string) (map[string]alerttypes.AlertType, bool, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.inner.Read(ctx, key)
}

func (c *countingCache) Write(ctx context.Context, key string, snapshot map[string]alerttypes.AlertType) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.inner.Write(ctx, key, snapshot)
}

// failingStore turns insert calls into errors while delegating everything
// else to a MemoryStore.
type failingStore struct {
	*alerttypes.MemoryStore
	insertErr error
}

func (s *failingStore) Insert(ctx context.Context, t alerttypes.AlertType) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	return s.MemoryStore.Insert(ctx, t)
}

func (s *failingStore) InsertMany(ctx context.Context, types []alerttypes.AlertType) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.MemoryStore.InsertMany(ctx, types)
}

func newRegistry(t *testing.T) (*alerttypes.Registry, *alerttypes.MemoryStore, *countingCache) {
	t.Helper()

	store := alerttypes.NewMemoryStore()
	cache := newCountingCache()

	registry, err := alerttypes.NewRegistry(context.Background(), store, cache)
	require.NoError(t, err)

	return registry, store, cache
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := alerttypes.NewRegistry(context.Background(), nil, alerttypes.NewMemoryCache())
	assert.ErrorIs(t, err, alerttypes.ErrStoreRequired)

	_, err = alerttypes.NewRegistry(context.Background(), alerttypes.NewMemoryStore(), nil)
	assert.ErrorIs(t, err, alerttypes.ErrCacheRequired)
}

func TestRegistry_AddAndGetByCode(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))

	got, err := registry.GetByCode("pm")
	require.NoError(t, err)
	assert.Equal(t, "pm", got.Code)
	assert.NotZero(t, got.ID, "storage must assign an ID")
	assert.True(t, got.Enabled)

	_, err = registry.GetByCode("missing")
	assert.ErrorIs(t, err, alerttypes.ErrAlertTypeNotFound)
}

func TestRegistry_AddExistingCodeIsNoOp(t *testing.T) {
	registry, store, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))
	before, err := registry.GetByCode("pm")
	require.NoError(t, err)

	// Re-adding with different flags must succeed without touching the row.
	dup := alerttypes.NewAlertType("pm")
	dup.Enabled = false
	require.NoError(t, registry.Add(ctx, dup))

	after, err := registry.GetByCode("pm")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rows, err := store.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRegistry_AddTypesFiltersExisting(t *testing.T) {
	registry, store, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))
	require.NoError(t, registry.AddTypes(ctx, []alerttypes.AlertType{
		alerttypes.NewAlertType("pm"),
		alerttypes.NewAlertType("quoted"),
		alerttypes.NewAlertType("post_threadauthor"),
	}))

	rows, err := store.ListTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	snapshot, err := registry.GetAlertTypes(ctx, false)
	require.NoError(t, err)
	assert.Contains(t, snapshot, "quoted")
	assert.Contains(t, snapshot, "post_threadauthor")
}

func TestRegistry_AddTypesInsertFailureStillReloads(t *testing.T) {
	store := &failingStore{MemoryStore: alerttypes.NewMemoryStore()}
	cache := newCountingCache()

	registry, err := alerttypes.NewRegistry(context.Background(), store, cache)
	require.NoError(t, err)

	writesBefore := cache.writes
	store.insertErr = errors.New("insert exploded")

	err = registry.AddTypes(context.Background(), []alerttypes.AlertType{alerttypes.NewAlertType("pm")})
	assert.ErrorIs(t, err, alerttypes.ErrAddFailed)

	// The failed batch must still refresh the cache to reflect reality.
	assert.Greater(t, cache.writes, writesBefore)
}

func TestRegistry_UpdateAlertTypes(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))
	pm, err := registry.GetByCode("pm")
	require.NoError(t, err)

	pm.Enabled = false
	pm.CanBeUserDisabled = false
	require.NoError(t, registry.UpdateAlertTypes(ctx, []alerttypes.AlertType{pm}))

	// The very next read must reflect the change; no stale-cache window.
	got, err := registry.GetByCode("pm")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.False(t, got.CanBeUserDisabled)
}

func TestRegistry_UpdateSkipsUnassignedIDs(t *testing.T) {
	registry, store, _ := newRegistry(t)
	ctx := context.Background()

	unsaved := alerttypes.NewAlertType("ghost")
	require.NoError(t, registry.UpdateAlertTypes(ctx, []alerttypes.AlertType{unsaved}))

	rows, err := store.ListTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRegistry_DeleteByCode(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))
	require.NoError(t, registry.DeleteByCode(ctx, "pm"))

	_, err := registry.GetByCode("pm")
	assert.ErrorIs(t, err, alerttypes.ErrAlertTypeNotFound)

	err = registry.DeleteByCode(ctx, "pm")
	assert.ErrorIs(t, err, alerttypes.ErrAlertTypeNotFound)
}

func TestRegistry_CacheMissFallsBackToStore(t *testing.T) {
	store := alerttypes.NewMemoryStore()
	cache := alerttypes.NewMemoryCache()
	ctx := context.Background()

	registry, err := alerttypes.NewRegistry(ctx, store, cache)
	require.NoError(t, err)
	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))

	// Simulate an external flush of the cache entry.
	cache.Invalidate(alerttypes.DefaultCacheKey)

	snapshot, err := registry.GetAlertTypes(ctx, false)
	require.NoError(t, err)
	assert.Contains(t, snapshot, "pm")
}

func TestRegistry_CachedReadSkipsStore(t *testing.T) {
	registry, _, cache := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))
	writesBefore := cache.writes

	_, err := registry.GetAlertTypes(ctx, false)
	require.NoError(t, err)

	// A plain read served from cache must not rebuild the snapshot.
	assert.Equal(t, writesBefore, cache.writes)
}

func TestRegistry_SnapshotCopyIsIsolated(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Add(ctx, alerttypes.NewAlertType("pm")))

	snapshot, err := registry.GetAlertTypes(ctx, false)
	require.NoError(t, err)

	mutated := snapshot["pm"]
	mutated.Enabled = false
	snapshot["pm"] = mutated

	got, err := registry.GetByCode("pm")
	require.NoError(t, err)
	assert.True(t, got.Enabled, "caller mutations must not leak into the registry")
}
