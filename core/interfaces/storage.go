// ABOUTME: Durable key-value storage contract shared by the job, chat and settings stores
// ABOUTME: Each domain keeps one JSON blob under a fixed key with read-modify-write semantics

package interfaces

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Storage.Get when no value exists for the key
var ErrKeyNotFound = errors.New("key not found")

// Storage defines the interface for durable key-value storage.
// Implementations can be SQLite, Redis, in-memory, or any other backend that
// survives process restarts.
//
// Example usage:
//
//	// Store a blob
//	err := storage.Set(ctx, "extractions", data)
//
//	// Read it back
//	data, err := storage.Get(ctx, "extractions")
//	if errors.Is(err, interfaces.ErrKeyNotFound) {
//		// nothing persisted yet
//	}
//
//	// Remove it
//	err = storage.Delete(ctx, "extractions")
type Storage interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound (possibly wrapped) if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value under the given key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}
