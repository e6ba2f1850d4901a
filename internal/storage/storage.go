package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// KV is a per-learner string-keyed blob store.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, learnerID int64, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, learnerID int64, key string, value []byte) error
	// Delete removes all keys in one operation. Missing keys are ignored.
	Delete(ctx context.Context, learnerID int64, keys ...string) error
}
