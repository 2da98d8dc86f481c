package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrVersionConflict indicates an optimistic-concurrency check failed:
	// the row changed between read and write.
	ErrVersionConflict = errors.New("repository: version conflict")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate record")
)
