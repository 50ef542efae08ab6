package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/repository"
)

func seedProduct(t *testing.T, repo repository.ProductRepository, name, category string, price int64, available bool) *repository.Product {
	t.Helper()
	p, err := repo.Create(context.Background(), &repository.Product{
		Name: name, Category: category, Price: price, Available: available, CreatedAt: 1, UpdatedAt: 1,
	})
	require.NoError(t, err)
	return p
}

func TestProductRepoMenuOrdering(t *testing.T) {
	ctx := context.Background()
	products := newTestStore(t).Products()

	seedProduct(t, products, "Poulet braisé", "Plats", 3500, true)
	seedProduct(t, products, "amiwo", "Plats", 2000, true)
	seedProduct(t, products, "Bissap", "Boissons", 500, true)
	seedProduct(t, products, "Pâte noire", "Plats", 1500, false)

	menu, err := products.List(ctx, repository.ProductFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, menu, 3)
	assert.Equal(t, []string{"amiwo", "Bissap", "Poulet braisé"}, []string{menu[0].Name, menu[1].Name, menu[2].Name})

	plats, err := products.List(ctx, repository.ProductFilter{AvailableOnly: true, Category: "Plats"})
	require.NoError(t, err)
	assert.Len(t, plats, 2)

	all, err := products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	categories, err := products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Boissons", "Plats"}, categories)
}

func TestProductRepoMutations(t *testing.T) {
	ctx := context.Background()
	products := newTestStore(t).Products()
	p := seedProduct(t, products, "Akassa", "Plats", 1000, true)

	_, err := products.Create(ctx, &repository.Product{Name: "Akassa", Price: 10})
	assert.ErrorIs(t, err, repository.ErrConflict)

	p.Price = 1200
	p.Description = "avec sauce"
	require.NoError(t, products.Update(ctx, p))
	require.NoError(t, products.SetAvailability(ctx, p.ID, false, 5))
	require.NoError(t, products.SetImage(ctx, p.ID, "https://cdn/akassa.jpg", 6))

	got, err := products.FindByName(ctx, "Akassa")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), got.Price)
	assert.False(t, got.Available)
	assert.Equal(t, "https://cdn/akassa.jpg", got.ImageURL)
	assert.Equal(t, int64(6), got.UpdatedAt)

	byIDs, err := products.FindByIDs(ctx, []int64{p.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)

	count, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, products.Delete(ctx, p.ID))
	assert.ErrorIs(t, products.Delete(ctx, p.ID), repository.ErrNotFound)
	_, err = products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
