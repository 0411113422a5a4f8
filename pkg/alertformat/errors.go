package alertformat

import "errors"

var (
	// ErrFormatterNotFound is returned when no formatter is registered for
	// the requested alert type code.
	ErrFormatterNotFound = errors.New("formatter not found for alert type")

	// ErrInitFailed wraps a formatter's one-time initialization failure.
	ErrInitFailed = errors.New("formatter initialization failed")

	// ErrDispatcherRequired is returned when a registry is created without
	// an event dispatcher.
	ErrDispatcherRequired = errors.New("hook dispatcher is required")
)
