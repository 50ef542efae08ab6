// 文件路径: internal/cache/memory.go
// 模块说明: 单实例部署的进程内缓存，基于 go-cache；重启后购物车会丢失。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryStore struct {
	backend *gocache.Cache
	// go-cache 的 Increment 不是 get-or-create，需要额外加锁
	mu   *sync.Mutex
	ttl  time.Duration
	keys keyspace
}

// NewMemoryStore 创建进程内缓存。
func NewMemoryStore(opts Options) Store {
	ttl := opts.ttl()
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = ttl
	}
	return &memoryStore{
		backend: gocache.New(ttl, cleanup),
		mu:      &sync.Mutex{},
		ttl:     ttl,
		keys:    newKeyspace(opts.Prefix),
	}
}

func (s *memoryStore) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.backend.Set(s.keys.key(key), data, pickTTL(ttl, s.ttl))
	return nil
}

func (s *memoryStore) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	raw, ok := s.backend.Get(s.keys.key(key))
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache key %s does not hold a document", key)
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.keys.key(key))
}

func (s *memoryStore) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, exp, ok := s.backend.GetWithExpiration(s.keys.key(key))
	if !ok || exp.IsZero() {
		return 0, false
	}
	if left := time.Until(exp); left > 0 {
		return left, true
	}
	return 0, false
}

func (s *memoryStore) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	full := s.keys.key(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Add(full, delta, pickTTL(ttl, s.ttl)); err == nil {
		return delta, nil
	}
	// Increment keeps the existing expiry
	n, err := s.backend.IncrementInt64(full, delta)
	if err != nil {
		return 0, fmt.Errorf("cache increment %s: %w", key, err)
	}
	return n, nil
}

func (s *memoryStore) Count(_ context.Context, key string) (int64, error) {
	raw, ok := s.backend.Get(s.keys.key(key))
	if !ok {
		return 0, nil
	}
	n, ok := raw.(int64)
	if !ok {
		return 0, fmt.Errorf("cache key %s is not a counter", key)
	}
	return n, nil
}

func (s *memoryStore) Namespace(prefix string) Store {
	return &memoryStore{
		backend: s.backend,
		mu:      s.mu,
		ttl:     s.ttl,
		keys:    newKeyspace(string(s.keys), prefix),
	}
}

func (s *memoryStore) Close() error {
	s.backend.Flush()
	return nil
}
