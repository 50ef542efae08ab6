package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/repository"
)

func TestUserRepoCreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	hasAdmin, err := users.HasAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, hasAdmin)

	created, err := users.Create(ctx, &repository.User{Name: "Awa", Email: " Awa@Example.com ", Phone: "97000000", Password: "hash", Status: repository.UserStatusActive})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := users.FindByEmail(ctx, "awa@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "awa@example.com", found.Email)
	assert.True(t, found.Active())
	assert.False(t, found.IsAdmin)

	_, err = users.Create(ctx, &repository.User{Name: "Dup", Email: "awa@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = users.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepoCreateFirstAdminOnlyOnce(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	_, err := users.Create(ctx, &repository.User{Name: "Awa", Email: "awa@mail.bj", Password: "h", Status: repository.UserStatusActive})
	require.NoError(t, err)

	first, err := users.CreateFirstAdmin(ctx, &repository.User{Name: "Chef", Email: "Chef@Brina.bj", Password: "h", Status: repository.UserStatusActive})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	assert.True(t, first.IsAdmin)

	found, err := users.FindByEmail(ctx, "chef@brina.bj")
	require.NoError(t, err)
	assert.True(t, found.IsAdmin)

	_, err = users.CreateFirstAdmin(ctx, &repository.User{Name: "Other", Email: "other@brina.bj", Password: "h", Status: repository.UserStatusActive})
	assert.ErrorIs(t, err, repository.ErrAdminExists)
	_, err = users.FindByEmail(ctx, "other@brina.bj")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepoSaveAndSearch(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	admin, err := users.Create(ctx, &repository.User{Name: "Chef", Email: "chef@brina.bj", Password: "h", IsAdmin: true, Status: 1})
	require.NoError(t, err)
	customer, err := users.Create(ctx, &repository.User{Name: "Koffi", Email: "koffi@mail.bj", Phone: "96112233", Password: "h", Status: 1})
	require.NoError(t, err)

	hasAdmin, err := users.HasAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, hasAdmin)

	customer.Address = "Cotonou"
	customer.Status = repository.UserStatusDisabled
	require.NoError(t, users.Save(ctx, customer))
	require.NoError(t, users.TouchLogin(ctx, customer.ID, 1700000000))

	reloaded, err := users.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cotonou", reloaded.Address)
	assert.False(t, reloaded.Active())
	assert.Equal(t, int64(1700000000), reloaded.LastLoginAt)

	notAdmin := false
	list, err := users.Search(ctx, repository.UserSearchFilter{IsAdmin: &notAdmin})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, customer.ID, list[0].ID)

	count, err := users.CountFiltered(ctx, repository.UserSearchFilter{Keyword: "chef"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	_ = admin

	assert.ErrorIs(t, users.Save(ctx, &repository.User{ID: 404, Email: "x@y.z"}), repository.ErrNotFound)
}
