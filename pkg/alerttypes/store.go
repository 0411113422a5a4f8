package alerttypes

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Store handles alert-type persistence in the relational store of record.
type Store interface {
	// ListTypes returns every alert type currently in storage.
	ListTypes(ctx context.Context) ([]AlertType, error)

	// Insert stores a new alert type and returns the assigned ID.
	Insert(ctx context.Context, t AlertType) (int64, error)

	// InsertMany stores a batch of new alert types in one call.
	InsertMany(ctx context.Context, types []AlertType) error

	// Update overwrites the policy flags of the type with the given ID.
	Update(ctx context.Context, t AlertType) error

	// Delete removes the type with the given ID.
	Delete(ctx context.Context, id int64) error
}

// MemoryStore is an in-memory Store implementation.
// Suitable for development and testing.
type MemoryStore struct {
	mu     sync.Mutex
	types  map[int64]AlertType
	nextID int64
}

// NewMemoryStore creates an empty in-memory alert-type store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		types:  make(map[int64]AlertType),
		nextID: 1,
	}
}

func (s *MemoryStore) ListTypes(ctx context.Context) ([]AlertType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]AlertType, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, t AlertType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Code == "" {
		return 0, errors.New("alert type code is required")
	}

	t.ID = s.nextID
	s.nextID++
	s.types[t.ID] = t

	return t.ID, nil
}

func (s *MemoryStore) InsertMany(ctx context.Context, types []AlertType) error {
	for _, t := range types {
		if _, err := s.Insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, t AlertType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.types[t.ID]
	if !ok {
		return nil
	}

	existing.Enabled = t.Enabled
	existing.CanBeUserDisabled = t.CanBeUserDisabled
	existing.DefaultUserEnabled = t.DefaultUserEnabled
	s.types[t.ID] = existing

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.types, id)
	return nil
}
