package storage

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded update matched no row because the stored state changed.
	ErrConflict = errors.New("state conflict")
)
