package alerts

import "errors"

var (
	// ErrAlertNotFound is returned when no alert matches after the
	// recipient-scoped filter has been applied.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrStorageRequired is returned when a Manager is constructed without
	// backing storage. This indicates a construction-order bug.
	ErrStorageRequired = errors.New("alert storage is required")

	// ErrTypeRegistryRequired is returned when a Manager is constructed
	// without an alert-type registry. This indicates a construction-order bug.
	ErrTypeRegistryRequired = errors.New("alert type registry is required")

	// ErrCommitFailed wraps a failed batch insert. By the time the failure
	// is observed the buffer has already been cleared, so the batch is not
	// retried; callers must resubmit the alerts to get another attempt.
	ErrCommitFailed = errors.New("failed to commit alert batch")

	// ErrAddAlertFailed wraps storage errors raised while resolving
	// recipient preferences during admission.
	ErrAddAlertFailed = errors.New("failed to add alert")

	// ErrQueryFailed wraps storage errors raised on the read paths.
	ErrQueryFailed = errors.New("alert query failed")

	// ErrUpdateFailed wraps storage errors raised by the bulk read/unread
	// and delete operations.
	ErrUpdateFailed = errors.New("alert update failed")
)
