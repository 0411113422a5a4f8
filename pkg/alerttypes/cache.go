package alerttypes

import (
	"context"
	"sync"
)

// DefaultCacheKey is the fixed key the full snapshot lives under.
const DefaultCacheKey = "alertkit:alert_types"

// Cache is the key/value snapshot cache the registry reads through.
// Read reports a miss with ok == false; an unreadable or undecodable value
// must also be reported as a miss so the registry falls back to the store.
type Cache interface {
	Read(ctx context.Context, key string) (snapshot map[string]AlertType, ok bool, err error)
	Write(ctx context.Context, key string, snapshot map[string]AlertType) error
}

// MemoryCache is an in-memory Cache implementation.
// Suitable for development and testing.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]AlertType
}

// NewMemoryCache creates an empty in-memory snapshot cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]map[string]AlertType),
	}
}

func (c *MemoryCache) Read(ctx context.Context, key string) (map[string]AlertType, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	out := make(map[string]AlertType, len(snapshot))
	for code, t := range snapshot {
		out[code] = t
	}

	return out, true, nil
}

func (c *MemoryCache) Write(ctx context.Context, key string, snapshot map[string]AlertType) error {
	copied := make(map[string]AlertType, len(snapshot))
	for code, t := range snapshot {
		copied[code] = t
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = copied
	return nil
}

// Invalidate drops a cached snapshot. Used by tests to simulate misses.
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
