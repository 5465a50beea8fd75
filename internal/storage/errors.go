package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by direct-by-id fetches only; list, search and
	// existence probes report empty results instead.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable wraps transient backend failures. No partial
	// write has occurred when it is returned.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError rejects a write before it reaches the backend.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Constraint)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
