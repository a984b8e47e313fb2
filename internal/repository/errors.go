package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a guarded write loses to a
	// concurrent update (e.g. accepting an already-taken ride).
	ErrConflict = errors.New("conflicting update")
)
