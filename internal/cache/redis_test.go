package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, Options{DefaultTTL: time.Hour, Prefix: "brina"}).Namespace("cart")
	ctx := context.Background()

	mock.ExpectSet("brina:cart:abc", []byte(`{"n":1}`), time.Hour).SetVal("OK")
	require.NoError(t, store.SetJSON(ctx, "abc", map[string]int{"n": 1}, 0))

	mock.ExpectGet("brina:cart:abc").SetVal(`{"n":1}`)
	var out map[string]int
	found, err := store.GetJSON(ctx, "abc", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, out["n"])

	mock.ExpectGet("brina:cart:gone").RedisNil()
	found, err = store.GetJSON(ctx, "gone", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreIncrementSetsExpiryOnce(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, Options{})
	ctx := context.Background()

	mock.ExpectIncrBy("rate:login", 1).SetVal(1)
	mock.ExpectExpire("rate:login", time.Minute).SetVal(true)
	n, err := store.Increment(ctx, "rate:login", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mock.ExpectIncrBy("rate:login", 1).SetVal(2)
	n, err = store.Increment(ctx, "rate:login", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreTTLAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, Options{})
	ctx := context.Background()

	mock.ExpectTTL("k").SetVal(30 * time.Second)
	ttl, ok := store.TTL(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, ttl)

	mock.ExpectTTL("missing").SetVal(-2 * time.Nanosecond)
	_, ok = store.TTL(ctx, "missing")
	assert.False(t, ok)

	mock.ExpectDel("k").SetVal(1)
	store.Delete(ctx, "k")

	mock.ExpectGet("login:chef").SetVal("4")
	n, err := store.Namespace("login").Count(ctx, "chef")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mock.ExpectGet("login:nobody").RedisNil()
	n, err = store.Namespace("login").Count(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mock.ExpectationsWereMet())
}
