package dao

import (
	"context"
)

// UpdateFunc receives the current value of a record, exists is false when the
// record has not been written yet. It returns the value to store. Returning
// ErrSkip leaves the record untouched.
type UpdateFunc func(data []byte, exists bool) ([]byte, error)

// Service is a durable key-value store of independent records.
type Service interface {
	// Load returns the record value or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save overwrites the record value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes a record, absent records are ignored.
	Delete(ctx context.Context, key string) error

	// Keys lists record keys with the given prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Update performs a single atomic read-modify-write of a record.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
