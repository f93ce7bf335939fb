package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is the generic key-value store underneath schedules, templates and slice meta.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetIfMissing writes value only when key is absent and reports whether it wrote.
	SetIfMissing(ctx context.Context, key string, value []byte) (bool, error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
