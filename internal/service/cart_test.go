package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartServiceAddMergesLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attieke := env.addProduct(t, "Attiéké poisson", 2500, true)
	jus := env.addProduct(t, "Jus de bissap", 500, true)
	svc := NewCartService(env.cache, env.store.Products(), time.Hour)

	view, err := svc.Add(ctx, "", attieke.ID, 0)
	require.NoError(t, err)
	_, err = uuid.Parse(view.ID)
	require.NoError(t, err)

	view, err = svc.Add(ctx, view.ID, jus.ID, 3)
	require.NoError(t, err)
	view, err = svc.Add(ctx, view.ID, attieke.ID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, attieke.ID, view.Items[0].ProductID)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, int64(5000), view.Items[0].Subtotal)
	assert.Equal(t, int64(6500), view.TotalPrice)
	assert.Equal(t, 5, view.TotalItems)

	restored, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Items, restored.Items)
}

func TestCartServiceRejectsBadAdds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hidden := env.addProduct(t, "Plat épuisé", 1000, false)
	dish := env.addProduct(t, "Riz gras", 1500, true)
	svc := NewCartService(env.cache, env.store.Products(), time.Hour)

	_, err := svc.Add(ctx, "", hidden.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.Add(ctx, "", 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, "", dish.ID, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	view, err := svc.Add(ctx, "", dish.ID, MaxLineQuantity)
	require.NoError(t, err)
	_, err = svc.Add(ctx, view.ID, dish.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartServiceUpdateRemoveClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addProduct(t, "Alloco", 800, true)
	b := env.addProduct(t, "Poulet braisé", 3000, true)
	svc := NewCartService(env.cache, env.store.Products(), time.Hour)

	view, err := svc.Add(ctx, "", a.ID, 1)
	require.NoError(t, err)
	id := view.ID
	_, err = svc.Add(ctx, id, b.ID, 1)
	require.NoError(t, err)

	view, err = svc.UpdateQuantity(ctx, id, a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(800*4+3000), view.TotalPrice)

	view, err = svc.UpdateQuantity(ctx, id, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, b.ID, view.Items[0].ProductID)

	view, err = svc.Remove(ctx, id, b.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, id, view.ID)

	_, err = svc.Add(ctx, id, a.ID, 2)
	require.NoError(t, err)
	view, err = svc.Clear(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	restored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, restored.Items)
}

func TestCartServiceGetRepricesAgainstMenu(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.addProduct(t, "Akassa", 1000, true)
	b := env.addProduct(t, "Amiwo", 1200, true)
	svc := NewCartService(env.cache, env.store.Products(), time.Hour)

	view, err := svc.Add(ctx, "", a.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, view.ID, b.ID, 1)
	require.NoError(t, err)

	a.Price = 1500
	require.NoError(t, env.store.Products().Update(ctx, a))
	require.NoError(t, env.store.Products().SetAvailability(ctx, b.ID, false, time.Now().Unix()))

	view, err = svc.Get(ctx, view.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1500), view.Items[0].UnitPrice)
	assert.Equal(t, int64(3000), view.TotalPrice)
	assert.Equal(t, []int64{b.ID}, view.Removed)

	// removal is persisted, so a second read reports nothing new
	view, err = svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Removed)
}

func TestCartServiceMalformedIDGetsFreshCart(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCartService(env.cache, env.store.Products(), time.Hour)

	view, err := svc.Get(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", view.ID)
	assert.Empty(t, view.Items)
}
