// ABOUTME: Redis storage backend using go-redis
// ABOUTME: Shares capture state between API replicas; keys are namespaced with a prefix

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	"github.com/anhbatoichoi/content-capture-universe/pkg/config"
)

// DefaultKeyPrefix namespaces every key written by this backend
const DefaultKeyPrefix = "capture:"

// Storage implements interfaces.Storage using Redis
type Storage struct {
	client *redis.Client
	prefix string
}

// NewStorage connects to Redis and verifies the connection
func NewStorage(cfg config.RedisConfig) (*Storage, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Storage{
		client: client,
		prefix: prefix,
	}, nil
}

// Get retrieves the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

// Set stores value under key without expiration
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}
