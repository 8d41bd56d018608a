package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint (user email) is violated.
	ErrDuplicate = errors.New("duplicate key")
)
