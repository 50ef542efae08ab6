package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartDoc struct {
	Items []string `json:"items"`
}

func TestMemoryStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	root := NewMemoryStore(Options{DefaultTTL: time.Minute, Prefix: "brina:"})
	carts := root.Namespace("cart")

	require.NoError(t, carts.SetJSON(ctx, "abc", cartDoc{Items: []string{"riz"}}, 0))

	var got cartDoc
	found, err := root.GetJSON(ctx, "cart:abc", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"riz"}, got.Items)

	found, err = root.GetJSON(ctx, "abc", nil)
	require.NoError(t, err)
	assert.False(t, found)

	carts.Delete(ctx, "abc")
	found, err = carts.GetJSON(ctx, "abc", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreJSONAndTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{})

	require.NoError(t, store.SetJSON(ctx, "k", cartDoc{Items: []string{"alloco"}}, time.Minute))
	ttl, ok := store.TTL(ctx, "k")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Minute)

	_, ok = store.TTL(ctx, "missing")
	assert.False(t, ok)

	// counters are not documents
	_, err := store.Increment(ctx, "n", 1, time.Minute)
	require.NoError(t, err)
	_, err = store.GetJSON(ctx, "n", &cartDoc{})
	assert.Error(t, err)
}

func TestMemoryStoreCounters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{}).Namespace("login")

	n, err := store.Count(ctx, "chef@brinaregal.bj")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := int64(1); i <= 3; i++ {
		n, err := store.Increment(ctx, "chef@brinaregal.bj", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err = store.Count(ctx, "chef@brinaregal.bj")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// the window is not extended by later increments
	first, ok := store.TTL(ctx, "chef@brinaregal.bj")
	require.True(t, ok)
	_, err = store.Increment(ctx, "chef@brinaregal.bj", 1, time.Hour)
	require.NoError(t, err)
	again, ok := store.TTL(ctx, "chef@brinaregal.bj")
	require.True(t, ok)
	assert.LessOrEqual(t, again, first)
}

func TestKeyspace(t *testing.T) {
	assert.Equal(t, "brina:cart:abc", newKeyspace("brina:", " cart").key("abc"))
	assert.Equal(t, "abc", newKeyspace().key(" abc "))
	assert.Equal(t, "rate", newKeyspace("rate").key(""))
}
