package kv

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the storage backend failed to serve a request.
// All backend-specific errors wrap it so callers can match with errors.Is.
var ErrUnavailable = errors.New("kv backend unavailable")

// Store is the uniform key-value contract shared by every backend.
// Absence is a distinct non-error result: Get returns ok=false for a
// missing key, and Delete of a missing key succeeds.
//
// The store does not coordinate concurrent read-modify-write sequences;
// each backend only guarantees that individual operations are serialized.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Delete(ctx context.Context, key string) error
}
