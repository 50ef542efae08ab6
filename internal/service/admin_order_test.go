package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/security"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []security.Event
}

func (r *recordingAudit) Record(_ context.Context, e security.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingAudit) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func placeTestOrder(t *testing.T, env *testEnv, phone string) *OrderView {
	t.Helper()
	dish := env.addProduct(t, "Plat "+phone, 1000, true)
	svc, _ := newTestCheckout(t, env)
	order, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: dish.ID, Quantity: 2}},
		Phone: phone,
		Place: "restaurant",
	})
	require.NoError(t, err)
	return order
}

func TestAdminOrderConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &recordingAudit{}
	order := placeTestOrder(t, env, "97000001")
	svc := NewAdminOrderService(env.store.Orders(), env.notes, env.hub, audit, env.logger)

	feed, cancel := env.hub.Subscribe()
	defer cancel()

	confirmed, err := svc.Confirm(ctx, order.ID, "admin@brina.bj")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, confirmed.Status)

	event := receiveEvent(t, feed)
	assert.Equal(t, EventOrderStatusChanged, event.Type)
	assert.Equal(t, order.Reference, event.Reference)
	assert.Equal(t, []string{security.EventOrderConfirmed}, audit.Kinds())

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, stored.Status)

	// terminal
	_, err = svc.Reject(ctx, order.ID, "trop tard", "admin@brina.bj")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Confirm(ctx, order.ID, "admin@brina.bj")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAdminOrderRejectKeepsReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := placeTestOrder(t, env, "97000002")
	svc := NewAdminOrderService(env.store.Orders(), env.notes, env.hub, nil, env.logger)

	rejected, err := svc.Reject(ctx, order.ID, "<i>Rupture</i> de stock", "admin")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusRejected, rejected.Status)
	assert.Equal(t, "Rupture de stock", rejected.StatusReason)

	byRef, err := svc.GetByReference(ctx, order.Reference)
	require.NoError(t, err)
	assert.Equal(t, "Rupture de stock", byRef.StatusReason)
	assert.Contains(t, env.notes.Events(), EventOrderStatusChanged)
}

func TestAdminOrderUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdminOrderService(env.store.Orders(), nil, nil, nil, env.logger)

	_, err := svc.Confirm(context.Background(), 404, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByReference(context.Background(), "BR-DEADBEEF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminOrderListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := placeTestOrder(t, env, "97000003")
	placeTestOrder(t, env, "97000004")
	placeTestOrder(t, env, "97000005")
	svc := NewAdminOrderService(env.store.Orders(), nil, nil, nil, env.logger)

	_, err := svc.Confirm(ctx, first.ID, "admin")
	require.NoError(t, err)

	page, err := svc.List(ctx, AdminOrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 3)

	page, err = svc.List(ctx, AdminOrderFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, AdminOrderFilter{Keyword: "97000004"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "97000004", page.Orders[0].Phone)

	page, err = svc.List(ctx, AdminOrderFilter{Status: "bogus", PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 2)
}

func TestPaginate(t *testing.T) {
	limit, offset := paginate(0, 0)
	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = paginate(3, 500)
	assert.Equal(t, maxPageSize, limit)
	assert.Equal(t, 2*maxPageSize, offset)
}
