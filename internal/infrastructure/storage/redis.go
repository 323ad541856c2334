package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taabalselect/storefront/internal/domain"
)

// RedisStore keeps records as plain Redis strings
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps a client and checks connectivity. ttl 0 keeps keys forever.
func NewRedisStore(ctx context.Context, rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis client must be non-nil")
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %v", domain.ErrStorageUnavailable, err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// NewRedisStoreFromURL parses a redis:// URL and connects
func NewRedisStoreFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %v", domain.ErrStorageUnavailable, err)
	}
	rdb := redis.NewClient(opts)
	store, err := NewRedisStore(ctx, rdb, ttl)
	if err != nil {
		rdb.Close()
		return nil, err
	}
	return store, nil
}

// Get reads key; redis.Nil maps to ErrKeyNotFound
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return val, nil
}

// Set writes key with the store ttl
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
