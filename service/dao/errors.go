package dao

import "errors"

// Common, reusable DAO errors. Using sentinel variables allows callers to
// reliably detect error conditions via errors.Is/As instead of brittle string
// comparisons.

var (
	// ErrNotFound is returned when the requested record does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidKey indicates that the supplied key is empty or otherwise
	// invalid.
	ErrInvalidKey = errors.New("dao: invalid key")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrSkip is returned by an UpdateFunc to abort an update without writing.
	ErrSkip = errors.New("dao: skip update")
)
