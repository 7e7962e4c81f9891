package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("store: key not found")

	// ErrConflict is returned when an atomic update lost the race too many
	// times. Callers may safely retry: every mutation in this engine is a
	// pure function of the stored state.
	ErrConflict = errors.New("store: concurrent modification")
)

// Store is the key-value repository the engine persists into. The redis
// and postgres implementations are durable; the memory implementation is
// the documented degraded fallback and the unit-test double.
type Store interface {
	// Get unmarshals the value at key into dest, or returns ErrNotFound.
	Get(ctx context.Context, key string, dest any) error

	// Set marshals value and writes it unconditionally.
	Set(ctx context.Context, key string, value any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key with the given prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Update applies a read-modify-write closure atomically. current is
	// nil when the key does not exist yet; the returned bytes replace the
	// stored value. Concurrent updates to the same key never lose writes;
	// when the race cannot be won within the retry budget the update fails
	// with ErrConflict.
	Update(ctx context.Context, key string, apply func(current []byte) ([]byte, error)) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend for logs and health checks.
	Name() string
}
