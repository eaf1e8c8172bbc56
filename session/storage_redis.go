package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/socialpost/lilogin/linkedin"
)

// DefaultRedisKeyPrefix namespaces the keys of a RedisStorage.
const DefaultRedisKeyPrefix = "lilogin:"

// RedisStorage is a Storage backed by Redis, for hosts that share client
// storage between processes.  Keys never expire.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a RedisStorage.
// Supported options:
//	WithKeyPrefix
func NewRedisStorage(client redis.UniversalClient, opt ...Option) (*RedisStorage, error) {
	const op = "session.NewRedisStorage"
	if client == nil {
		return nil, fmt.Errorf("%s: redis client is nil: %w", op, linkedin.ErrNilParameter)
	}
	opts := getOpts(opt...)
	return &RedisStorage{
		client: client,
		prefix: opts.withKeyPrefix,
	}, nil
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "RedisStorage.Get"
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	const op = "RedisStorage.Set"
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	const op = "RedisStorage.Remove"
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
