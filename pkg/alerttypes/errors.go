package alerttypes

import "errors"

var (
	// ErrAlertTypeNotFound is returned when a code is absent from the
	// current snapshot. Callers must treat this as "policy not registered",
	// not as a storage failure.
	ErrAlertTypeNotFound = errors.New("alert type not found")

	// ErrStoreRequired is returned when a Registry is constructed without
	// a backing store.
	ErrStoreRequired = errors.New("alert type store is required")

	// ErrCacheRequired is returned when a Registry is constructed without
	// a snapshot cache.
	ErrCacheRequired = errors.New("alert type cache is required")

	// ErrLoadFailed wraps store errors raised while rebuilding the snapshot.
	ErrLoadFailed = errors.New("failed to load alert types")

	// ErrAddFailed wraps store errors raised while inserting alert types.
	// The snapshot is still reloaded to reflect whatever the store holds.
	ErrAddFailed = errors.New("failed to add alert types")

	// ErrUpdateFailed wraps store errors raised while updating alert types.
	ErrUpdateFailed = errors.New("failed to update alert types")

	// ErrDeleteFailed wraps store errors raised while deleting an alert type.
	ErrDeleteFailed = errors.New("failed to delete alert type")
)
