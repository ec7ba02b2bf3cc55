package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is a typed JSON view over a single key of a Service.
type Record[T any] struct {
	service Service
	key     string
}

// NewRecord creates a typed record bound to key.
func NewRecord[T any](service Service, key string) *Record[T] {
	return &Record[T]{service: service, key: key}
}

// Key returns the record key.
func (r *Record[T]) Key() string { return r.key }

// Get returns the stored value, or a zero value when the record is absent.
func (r *Record[T]) Get(ctx context.Context) (*T, error) {
	data, err := r.service.Load(ctx, r.key)
	if errors.Is(err, ErrNotFound) {
		return new(T), nil
	}
	if err != nil {
		return nil, err
	}
	return r.decode(data)
}

// Put overwrites the stored value.
func (r *Record[T]) Put(ctx context.Context, value *T) error {
	if value == nil {
		return ErrNilEntity
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", r.key, err)
	}
	return r.service.Save(ctx, r.key, data)
}

// Mutate applies fn to the current value within one atomic update and returns
// the resulting value. When fn returns ErrSkip nothing is written and the
// value seen by fn is returned; fn must not modify it in that case.
func (r *Record[T]) Mutate(ctx context.Context, fn func(value *T) error) (*T, error) {
	var result *T
	err := r.service.Update(ctx, r.key, func(data []byte, exists bool) ([]byte, error) {
		value := new(T)
		if exists && len(data) > 0 {
			decoded, err := r.decode(data)
			if err != nil {
				return nil, err
			}
			value = decoded
		}
		if err := fn(value); err != nil {
			if errors.Is(err, ErrSkip) {
				result = value
			}
			return nil, err
		}
		result = value
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", r.key, err)
		}
		return encoded, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Record[T]) decode(data []byte) (*T, error) {
	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", r.key, err)
	}
	return value, nil
}
