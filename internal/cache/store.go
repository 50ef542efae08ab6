package cache

import (
	"context"
	"strings"
	"time"
)

// Store 是购物车、限流计数与登录失败计数共用的缓存。
// 值要么是 JSON 文档（购物车），要么是带过期时间的整数计数器。
type Store interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// GetJSON 解码到 dest；键不存在时返回 false 且不报错。
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string)
	TTL(ctx context.Context, key string) (time.Duration, bool)

	// Increment adds delta to the counter. The expiry is set when the counter is
	// created and is not extended by later increments.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	// Count reads a counter, 0 when missing.
	Count(ctx context.Context, key string) (int64, error)

	Namespace(prefix string) Store
	Close() error
}

// Options 配置缓存行为，内存与 Redis 实现共用。
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

func (o Options) ttl() time.Duration {
	if o.DefaultTTL <= 0 {
		return 5 * time.Minute
	}
	return o.DefaultTTL
}

// keyspace joins namespace segments with ':' (brina:cart:<id>).
type keyspace string

func newKeyspace(parts ...string) keyspace {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, ": "); p != "" {
			segs = append(segs, p)
		}
	}
	return keyspace(strings.Join(segs, ":"))
}

func (k keyspace) key(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case k == "":
		return name
	case name == "":
		return string(k)
	}
	return string(k) + ":" + name
}

func pickTTL(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}
