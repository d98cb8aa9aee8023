// ABOUTME: In-memory storage backend built on patrickmn/go-cache
// ABOUTME: Keeps blobs for the lifetime of the process; used for development and tests

package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// Storage implements interfaces.Storage in process memory. Entries never
// expire; they are lost when the process exits.
type Storage struct {
	items *cache.Cache
}

// NewStorage creates an empty in-memory storage
func NewStorage() *Storage {
	return &Storage{items: cache.New(cache.NoExpiration, 10*time.Minute)}
}

// Get retrieves a copy of the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := s.items.Get(key)
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}

	stored := value.([]byte)
	result := make([]byte, len(stored))
	copy(result, stored)
	return result, nil
}

// Set stores a copy of value under key
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	s.items.Set(key, valueCopy, cache.NoExpiration)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.items.Delete(key)
	return nil
}

// Len returns the number of stored keys
func (s *Storage) Len() int {
	return s.items.ItemCount()
}
