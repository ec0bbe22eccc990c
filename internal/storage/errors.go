// ABOUTME: Common storage errors
// ABOUTME: Enables consistent error handling across storage implementations

package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrReadOnly is returned when attempting to write to a read-only store.
var ErrReadOnly = errors.New("storage is read-only")

// ErrUnavailable is returned when the backing store cannot be read or written.
var ErrUnavailable = errors.New("storage unavailable")

// Unavailable wraps a backend failure so callers can match ErrUnavailable
// while keeping the underlying cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
