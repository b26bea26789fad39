package wtman

import "errors"

// Engine errors
var (
	// ErrCapacityExceeded indicates the concurrency budget is exhausted.
	// Requests are rejected, never queued.
	ErrCapacityExceeded = errors.New("concurrency budget exhausted")

	// ErrEmptyCommand indicates a request with no command to run.
	ErrEmptyCommand = errors.New("empty command")

	// ErrNotActive indicates a subscribe attempt for an execution that is
	// unknown or already terminal.
	ErrNotActive = errors.New("execution is not active")

	// ErrRegistryClosed indicates a submit after Close.
	ErrRegistryClosed = errors.New("registry is closed")
)
