package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/repository"
)

func TestSettingRepoUpsert(t *testing.T) {
	ctx := context.Background()
	settings := newTestStore(t).Settings()

	require.NoError(t, settings.Upsert(ctx, &repository.Setting{Key: "auth_signing_key", Value: "a", Category: "security", UpdatedAt: 1}))
	require.NoError(t, settings.Upsert(ctx, &repository.Setting{Key: "auth_signing_key", Value: "b", Category: "security", UpdatedAt: 2}))
	require.NoError(t, settings.Upsert(ctx, &repository.Setting{Key: "site_name", Value: "Brina", Category: "site", UpdatedAt: 2}))

	got, err := settings.Get(ctx, "auth_signing_key")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Value)

	security, err := settings.ListByCategory(ctx, "security")
	require.NoError(t, err)
	assert.Len(t, security, 1)

	_, err = settings.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSettingRepoUpsertManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	settings := newTestStore(t).Settings()

	require.NoError(t, settings.UpsertMany(ctx, []repository.Setting{
		{Key: "restaurant_phone", Value: "+22997000000", Category: "restaurant", UpdatedAt: 1},
		{Key: "restaurant_notice", Value: "Fermé lundi", Category: "restaurant", UpdatedAt: 1},
	}))
	err := settings.UpsertMany(ctx, []repository.Setting{
		{Key: "restaurant_phone", Value: "+22961000000", Category: "restaurant", UpdatedAt: 2},
		{Key: "", Value: "broken"},
	})
	require.Error(t, err)

	got, err := settings.Get(ctx, "restaurant_phone")
	require.NoError(t, err)
	assert.Equal(t, "+22997000000", got.Value)

	list, err := settings.ListByCategory(ctx, "restaurant")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSettingRepoInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	settings := newTestStore(t).Settings()

	stored, created, err := settings.InsertIfAbsent(ctx, &repository.Setting{Key: "auth_signing_key", Value: "first", Category: "security", UpdatedAt: 1})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "first", stored.Value)

	stored, created, err = settings.InsertIfAbsent(ctx, &repository.Setting{Key: "auth_signing_key", Value: "second", Category: "security", UpdatedAt: 2})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "first", stored.Value)
}

func TestLoginLogRepo(t *testing.T) {
	ctx := context.Background()
	logs := newTestStore(t).LoginLogs()

	require.NoError(t, logs.Create(ctx, &repository.LoginLog{Email: "A@b.c", IP: "1.1.1.1", Success: false, Reason: "invalid_password"}))
	require.NoError(t, logs.Create(ctx, &repository.LoginLog{Email: "a@b.c", UserID: int64Ptr(3), Success: true}))
	assert.Error(t, logs.Create(ctx, &repository.LoginLog{}))

	list, err := logs.ListByEmail(ctx, "a@b.c", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Success)
	assert.Equal(t, "invalid_password", list[1].Reason)
	assert.Equal(t, "1.1.1.1", list[1].IP)
}

func TestLoginLogRepoDeleteBefore(t *testing.T) {
	ctx := context.Background()
	logs := newTestStore(t).LoginLogs()

	require.NoError(t, logs.Create(ctx, &repository.LoginLog{Email: "old@b.c", CreatedAt: 100}))
	require.NoError(t, logs.Create(ctx, &repository.LoginLog{Email: "new@b.c", CreatedAt: 500}))

	removed, err := logs.DeleteBefore(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	left, err := logs.ListByEmail(ctx, "new@b.c", 10)
	require.NoError(t, err)
	assert.Len(t, left, 1)
	gone, err := logs.ListByEmail(ctx, "old@b.c", 10)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestMediaAssetRepo(t *testing.T) {
	ctx := context.Background()
	assets := newTestStore(t).MediaAssets()

	_, err := assets.Create(ctx, &repository.MediaAsset{PublicID: "paiements/x", URL: "https://cdn/x.jpg", Folder: "paiements", ContentType: "image/jpeg", Size: 10, Driver: "cloudinary", CreatedAt: 1})
	require.NoError(t, err)

	got, err := assets.FindByPublicID(ctx, "paiements/x")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.jpg", got.URL)

	require.NoError(t, assets.DeleteByPublicID(ctx, "paiements/x"))
	_, err = assets.FindByPublicID(ctx, "paiements/x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
