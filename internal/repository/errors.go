package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write hits a unique constraint or merges
	// a tag into itself.
	ErrConflict = errors.New("record conflicts with an existing one")
)
