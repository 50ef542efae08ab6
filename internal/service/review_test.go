package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/repository"
)

func TestReviewLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "client@brina.bj", "secret12", false)
	public := NewReviewService(env.store.Reviews(), env.store.Users())
	admin := NewAdminReviewService(env.store.Reviews(), env.logger)

	_, err := public.Create(ctx, ReviewInput{UserID: user.ID, Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = public.Create(ctx, ReviewInput{UserID: 999, Rating: 4})
	assert.ErrorIs(t, err, ErrUnauthorized)

	first, err := public.Create(ctx, ReviewInput{UserID: user.ID, Rating: 5, Comment: "Délicieux <script>alert(1)</script>"})
	require.NoError(t, err)
	assert.Equal(t, ReviewStatusPending, first.Status)
	assert.Equal(t, "Awa", first.AuthorName)
	assert.NotContains(t, first.Comment, "script")

	second, err := public.Create(ctx, ReviewInput{UserID: user.ID, Rating: 4, Comment: "Bon service"})
	require.NoError(t, err)
	third, err := public.Create(ctx, ReviewInput{UserID: user.ID, Rating: 1, Comment: "spam"})
	require.NoError(t, err)

	page, err := public.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Reviews)

	_, err = admin.Approve(ctx, first.ID)
	require.NoError(t, err)
	_, err = admin.Approve(ctx, second.ID)
	require.NoError(t, err)
	rejected, err := admin.Reject(ctx, third.ID)
	require.NoError(t, err)
	assert.Equal(t, ReviewStatusRejected, rejected.Status)

	page, err = public.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.InDelta(t, 4.5, page.Average, 0.001)

	all, err := admin.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	onlyRejected, err := admin.List(ctx, "REJECTED", 1, 10)
	require.NoError(t, err)
	require.Len(t, onlyRejected.Reviews, 1)

	require.NoError(t, admin.Delete(ctx, third.ID))
	assert.ErrorIs(t, admin.Delete(ctx, third.ID), ErrNotFound)
	_, err = admin.Approve(ctx, third.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, testLocation)
	today := now.Add(-2 * time.Hour).Unix()
	earlier := time.Date(2026, 3, 2, 9, 0, 0, 0, testLocation).Unix()

	orders := []*repository.Order{
		{Reference: "BR-00000001", Kind: "delivery", Phone: "97000001", Total: 5000, Place: "restaurant", Status: "confirmed", CreatedAt: today},
		{Reference: "BR-00000002", Kind: "delivery", Phone: "97000002", Total: 3000, Place: "restaurant", Status: "pending", CreatedAt: today},
		{Reference: "BR-00000003", Kind: "delivery", Phone: "97000003", Total: 2000, Place: "abomey", Status: "confirmed", CreatedAt: earlier},
		{Reference: "BR-00000004", Kind: "reservation", Phone: "97000004", Status: "reservation", PartySize: 4, ReservationDate: "2026-03-20", ReservationTime: "20:00", CreatedAt: today},
		{Reference: "BR-00000005", Kind: "reservation", Phone: "97000005", Status: "confirmed", PartySize: 2, ReservationDate: "2026-03-10", ReservationTime: "20:00", CreatedAt: earlier},
	}
	for _, o := range orders {
		o.UpdatedAt = o.CreatedAt
		_, err := env.store.Orders().Create(ctx, o)
		require.NoError(t, err)
	}
	env.addProduct(t, "Akpan", 500, true)
	env.addProduct(t, "Yovo doko", 300, false)
	customer := env.addUser(t, "client@brina.bj", "secret12", false)
	env.addUser(t, "admin@brina.bj", "secret12", true)

	for _, rating := range []int{4, 5} {
		r, err := env.store.Reviews().Create(ctx, &repository.Review{UserID: &customer.ID, AuthorName: "Awa", Rating: rating, Status: ReviewStatusApproved, CreatedAt: today, UpdatedAt: today})
		require.NoError(t, err)
		require.NotZero(t, r.ID)
	}
	_, err := env.store.Reviews().Create(ctx, &repository.Review{UserID: &customer.ID, AuthorName: "Awa", Rating: 1, Status: ReviewStatusPending, CreatedAt: today, UpdatedAt: today})
	require.NoError(t, err)

	svc := NewAdminStatService(env.store, env.restaurant)
	svc.(*adminStatService).now = fixedClock(now)

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrdersToday)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.PendingReservations)
	assert.Equal(t, int64(1), stats.UpcomingReservations)
	assert.Equal(t, int64(5000), stats.RevenueToday)
	assert.Equal(t, int64(7000), stats.RevenueMonth)
	assert.Equal(t, int64(2), stats.ProductCount)
	assert.Equal(t, int64(1), stats.CustomerCount)
	assert.Equal(t, int64(1), stats.PendingReviews)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
}
