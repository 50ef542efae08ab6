package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisStore wraps a go-redis client so carts and counters survive restarts
// and are shared between replicas.
func NewRedisStore(client *redis.Client, opts Options) Store {
	return &redisStore{
		client: client,
		ttl:    opts.ttl(),
		keys:   newKeyspace(opts.Prefix),
		owner:  true,
	}
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	keys   keyspace
	// only the root store closes the shared client
	owner bool
}

func (s *redisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.keys.key(key), data, pickTTL(ttl, s.ttl)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *redisStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, s.keys.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	s.client.Del(ctx, s.keys.key(key))
}

func (s *redisStore) TTL(ctx context.Context, key string) (time.Duration, bool) {
	ttl, err := s.client.TTL(ctx, s.keys.key(key)).Result()
	if err != nil || ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

func (s *redisStore) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	full := s.keys.key(key)
	current, err := s.client.IncrBy(ctx, full, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	// first write of the window starts the expiry
	if current == delta {
		if err := s.client.Expire(ctx, full, pickTTL(ttl, s.ttl)).Err(); err != nil {
			return current, fmt.Errorf("redis expire: %w", err)
		}
	}
	return current, nil
}

func (s *redisStore) Count(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Get(ctx, s.keys.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return n, nil
}

func (s *redisStore) Namespace(prefix string) Store {
	return &redisStore{
		client: s.client,
		ttl:    s.ttl,
		keys:   newKeyspace(string(s.keys), prefix),
	}
}

func (s *redisStore) Close() error {
	if !s.owner {
		return nil
	}
	return s.client.Close()
}
