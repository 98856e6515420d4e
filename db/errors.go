// ABOUTME: Error values returned by the in-memory store
// ABOUTME: NotFound is the only data-layer failure; it names the entity and ID
package db

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// NotFoundError is returned when a lookup by ID misses. It matches ErrNotFound
// under errors.Is.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound reports whether err is, or wraps, a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
