// Package alerttypes maintains the authoritative set of alert-type policy
// records behind a read-through snapshot cache.
//
// An alert type describes one category of notification: whether it is enabled
// at all (global kill-switch), whether recipients may opt out of it, and
// whether it is delivered to users by default. Every admission and listing
// decision in the alert pipeline routes through this registry, so the full
// set is cached as one snapshot under a fixed key and only rebuilt from the
// relational store when the cache misses or a mutation forces it.
//
// Consistency is write-invalidate, not TTL based: every mutating operation
// (Add, AddTypes, UpdateAlertTypes, DeleteByCode, DeleteByID) forces a reload
// immediately after touching the store, so the next read always observes the
// mutation. There is no stale-cache window after a local write.
//
// # Usage
//
//	store := alerttypes.NewPGStore(pool)
//	cache := alerttypes.NewRedisCache(client)
//	registry, err := alerttypes.NewRegistry(ctx, store, cache)
//	if err != nil {
//	    // initial snapshot load failed
//	}
//
//	pm, err := registry.GetByCode("pm")
//	if errors.Is(err, alerttypes.ErrAlertTypeNotFound) {
//	    // policy not registered; not a storage error
//	}
package alerttypes
