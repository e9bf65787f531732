package domain

import "errors"

// Domain errors represent scheduling failures reported by collaborators.
// The hardware vsync state machine itself never fails.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Dispatch Errors.

	// ErrUnknownToken indicates a callback token that is not registered.
	ErrUnknownToken = errors.New("unknown callback token")

	// ErrDispatchClosed indicates the dispatch has been shut down.
	ErrDispatchClosed = errors.New("dispatch closed")

	// ErrRegistrationClosed indicates a callback registration was released.
	ErrRegistrationClosed = errors.New("registration closed")

	// Configuration Errors.

	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)
