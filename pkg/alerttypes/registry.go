package alerttypes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Registry is the single source of truth for alert-type policy.
//
// The full set of types is held in memory and mirrored in the Cache under a
// fixed key. Reads are served from the snapshot; every mutation writes the
// store first and then forces a rebuild, so a reader calling in right after a
// mutation always observes it.
type Registry struct {
	store  Store
	cache  Cache
	logger *slog.Logger

	cacheKey string

	mu    sync.RWMutex
	types map[string]AlertType // keyed by code
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger for the Registry.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCacheKey overrides the fixed key the snapshot is cached under.
func WithCacheKey(key string) RegistryOption {
	return func(r *Registry) {
		if key != "" {
			r.cacheKey = key
		}
	}
}

// NewRegistry creates a registry and loads the initial snapshot. Construction
// fails if the snapshot cannot be built, so a successfully constructed
// registry is always usable.
func NewRegistry(ctx context.Context, store Store, cache Cache, opts ...RegistryOption) (*Registry, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	r := &Registry{
		store:    store,
		cache:    cache,
		logger:   slog.Default(),
		cacheKey: DefaultCacheKey,
		types:    make(map[string]AlertType),
	}

	for _, opt := range opts {
		opt(r)
	}

	if _, err := r.GetAlertTypes(ctx, false); err != nil {
		return nil, err
	}

	return r, nil
}

// GetAlertTypes returns every alert type keyed by code.
//
// On a cache miss, or when forceReload is true, the snapshot is rebuilt from
// the store and written back to the cache in full. The returned map is a copy
// and safe for the caller to hold on to.
func (r *Registry) GetAlertTypes(ctx context.Context, forceReload bool) (map[string]AlertType, error) {
	if !forceReload {
		cached, ok, err := r.cache.Read(ctx, r.cacheKey)
		if err == nil && ok {
			r.mu.Lock()
			r.types = cached
			r.mu.Unlock()

			return copySnapshot(cached), nil
		}
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "alert type cache read failed, falling back to store",
				slog.Any("error", err),
			)
		}
	}

	types, err := r.store.ListTypes(ctx)
	if err != nil {
		return nil, errors.Join(ErrLoadFailed, err)
	}

	snapshot := make(map[string]AlertType, len(types))
	for _, t := range types {
		snapshot[t.Code] = t
	}

	if err := r.cache.Write(ctx, r.cacheKey, snapshot); err != nil {
		// A failed cache write only costs the next reader a rebuild.
		r.logger.LogAttrs(ctx, slog.LevelWarn, "alert type cache write failed",
			slog.Any("error", err),
		)
	}

	r.mu.Lock()
	r.types = snapshot
	r.mu.Unlock()

	return copySnapshot(snapshot), nil
}

// Add registers a single new alert type. Adding a code that already exists is
// a no-op success; existing rows are never updated through Add.
func (r *Registry) Add(ctx context.Context, t AlertType) error {
	r.mu.RLock()
	_, exists := r.types[t.Code]
	r.mu.RUnlock()

	if exists {
		return nil
	}

	t.ID = 0
	_, insertErr := r.store.Insert(ctx, t)

	// Reload regardless of the insert outcome so the snapshot reflects
	// whatever the store now holds.
	if _, err := r.GetAlertTypes(ctx, true); err != nil {
		return err
	}

	if insertErr != nil {
		return errors.Join(ErrAddFailed, insertErr)
	}

	return nil
}

// AddTypes registers a batch of alert types in one store call, skipping any
// whose code is already known. Exactly one forced reload happens afterwards,
// whether or not anything was inserted.
func (r *Registry) AddTypes(ctx context.Context, types []AlertType) error {
	r.mu.RLock()
	toInsert := make([]AlertType, 0, len(types))
	for _, t := range types {
		if _, exists := r.types[t.Code]; exists {
			continue
		}
		t.ID = 0
		toInsert = append(toInsert, t)
	}
	r.mu.RUnlock()

	var insertErr error
	if len(toInsert) > 0 {
		insertErr = r.store.InsertMany(ctx, toInsert)
	}

	if _, err := r.GetAlertTypes(ctx, true); err != nil {
		return err
	}

	if insertErr != nil {
		return errors.Join(ErrAddFailed, insertErr)
	}

	return nil
}

// UpdateAlertTypes overwrites the policy flags of each given type by ID.
// Types without an assigned ID are skipped. A single forced reload runs after
// the whole set has been applied, not per row.
func (r *Registry) UpdateAlertTypes(ctx context.Context, types []AlertType) error {
	var updateErr error
	for _, t := range types {
		if t.ID == 0 {
			continue
		}
		if err := r.store.Update(ctx, t); err != nil {
			updateErr = errors.Join(updateErr, err)
		}
	}

	if _, err := r.GetAlertTypes(ctx, true); err != nil {
		return err
	}

	if updateErr != nil {
		return errors.Join(ErrUpdateFailed, updateErr)
	}

	return nil
}

// GetByCode returns the alert type with the given code from the current
// snapshot. Returns ErrAlertTypeNotFound when the code is not registered.
func (r *Registry) GetByCode(code string) (AlertType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[code]
	if !ok {
		return AlertType{}, ErrAlertTypeNotFound
	}

	return t, nil
}

// DeleteByCode removes the alert type with the given code. Deleting an
// unknown code returns ErrAlertTypeNotFound.
func (r *Registry) DeleteByCode(ctx context.Context, code string) error {
	t, err := r.GetByCode(code)
	if err != nil {
		return err
	}

	return r.DeleteByID(ctx, t.ID)
}

// DeleteByID removes the alert type with the given ID and forces a reload.
func (r *Registry) DeleteByID(ctx context.Context, id int64) error {
	deleteErr := r.store.Delete(ctx, id)

	if _, err := r.GetAlertTypes(ctx, true); err != nil {
		return err
	}

	if deleteErr != nil {
		return errors.Join(ErrDeleteFailed, deleteErr)
	}

	return nil
}

func copySnapshot(snapshot map[string]AlertType) map[string]AlertType {
	out := make(map[string]AlertType, len(snapshot))
	for code, t := range snapshot {
		out[code] = t
	}
	return out
}
