package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/security"
)

func newTestCheckout(t *testing.T, env *testEnv) (CheckoutService, CartService) {
	t.Helper()
	carts := NewCartService(env.cache, env.store.Products(), time.Hour)
	rate, err := security.NewRateLimiter(env.cache)
	require.NoError(t, err)
	svc := NewCheckoutService(CheckoutDeps{
		Orders:     env.store.Orders(),
		Products:   env.store.Products(),
		Users:      env.store.Users(),
		Carts:      carts,
		Restaurant: env.restaurant,
		Notifier:   env.notes,
		Events:     env.hub,
		Rate:       rate,
		Logger:     env.logger,
	})
	return svc, carts
}

func TestCheckoutFromCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dish := env.addProduct(t, "Poisson braisé", 4000, true)
	svc, carts := newTestCheckout(t, env)

	cartView, err := carts.Add(ctx, "", dish.ID, 2)
	require.NoError(t, err)

	feed, cancel := env.hub.Subscribe()
	defer cancel()

	order, err := svc.Checkout(ctx, CheckoutInput{
		CartID:       cartView.ID,
		CustomerName: "Koffi <b>A.</b>",
		Phone:        "+229 97 12-34-56",
		Place:        "dekounge",
		Instructions: "Sans piment",
		IP:           "10.0.0.1",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^BR-[0-9A-F]{8}$`, order.Reference)
	assert.Equal(t, OrderKindDelivery, order.Kind)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, int64(8000), order.Total)
	assert.Equal(t, "+22997123456", order.Phone)
	assert.Equal(t, "Koffi A.", order.CustomerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Poisson braisé", order.Items[0].Name)

	emptied, err := carts.Get(ctx, cartView.ID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Items)

	event := receiveEvent(t, feed)
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, order.Reference, event.Reference)
	assert.Equal(t, []string{EventOrderCreated}, env.notes.Events())
}

func TestCheckoutIgnoresClientPrices(t *testing.T) {
	env := newTestEnv(t)
	dish := env.addProduct(t, "Pâte rouge", 1500, true)
	svc, _ := newTestCheckout(t, env)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{ProductID: dish.ID, Quantity: 3}, {ProductID: dish.ID, Quantity: 1}},
		Phone: "97000000",
		Place: "restaurant",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 4, order.Items[0].Quantity)
	assert.Equal(t, int64(6000), order.Total)
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dish := env.addProduct(t, "Igname pilée", 2000, true)
	off := env.addProduct(t, "Plat retiré", 2000, false)
	svc, _ := newTestCheckout(t, env)
	items := []CheckoutItem{{ProductID: dish.ID, Quantity: 1}}

	_, err := svc.Checkout(ctx, CheckoutInput{Items: items, Phone: "", Place: "restaurant"})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Checkout(ctx, CheckoutInput{Items: items, Phone: "97000000", Place: "cotonou"})
	assert.ErrorIs(t, err, ErrInvalidPlace)

	_, err = svc.Checkout(ctx, CheckoutInput{Items: items, Phone: "97000000", Place: "hors_zone"})
	assert.ErrorIs(t, err, ErrPaymentProofRequired)

	_, err = svc.Checkout(ctx, CheckoutInput{Phone: "97000000", Place: "restaurant"})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Checkout(ctx, CheckoutInput{
		Items: []CheckoutItem{{ProductID: off.ID, Quantity: 1}},
		Phone: "97000000",
		Place: "restaurant",
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)

	order, err := svc.Checkout(ctx, CheckoutInput{
		Items:           items,
		Phone:           "97000000",
		Place:           "hors_zone",
		PaymentProofURL: "/uploads/paiements/proof.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "hors_zone", order.Place)
	assert.Equal(t, "/uploads/paiements/proof.jpg", order.PaymentProofURL)
}

func TestCheckoutRejectsCartWithWithdrawnProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dish := env.addProduct(t, "Gboma", 1800, true)
	svc, carts := newTestCheckout(t, env)

	view, err := carts.Add(ctx, "", dish.ID, 1)
	require.NoError(t, err)
	require.NoError(t, env.store.Products().SetAvailability(ctx, dish.ID, false, time.Now().Unix()))

	_, err = svc.Checkout(ctx, CheckoutInput{CartID: view.ID, Phone: "97000000", Place: "restaurant"})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckoutUsesAccountName(t *testing.T) {
	env := newTestEnv(t)
	dish := env.addProduct(t, "Wagassi", 2200, true)
	user := env.addUser(t, "awa@example.com", "secret1", false)
	svc, _ := newTestCheckout(t, env)

	order, err := svc.Checkout(context.Background(), CheckoutInput{
		Items:  []CheckoutItem{{ProductID: dish.ID, Quantity: 1}},
		Phone:  "97000000",
		Place:  "abomey",
		UserID: &user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Awa", order.CustomerName)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
}

func TestCheckoutRateLimitedPerIP(t *testing.T) {
	env := newTestEnv(t)
	dish := env.addProduct(t, "Ablo", 700, true)
	svc, _ := newTestCheckout(t, env)
	input := CheckoutInput{
		Items: []CheckoutItem{{ProductID: dish.ID, Quantity: 1}},
		Phone: "97000000",
		Place: "restaurant",
		IP:    "203.0.113.9",
	}
	for i := 0; i < checkoutLimit; i++ {
		_, err := svc.Checkout(context.Background(), input)
		require.NoError(t, err)
	}
	_, err := svc.Checkout(context.Background(), input)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestTrackRequiresMatchingPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dish := env.addProduct(t, "Kom", 900, true)
	svc, _ := newTestCheckout(t, env)

	order, err := svc.Checkout(ctx, CheckoutInput{
		Items: []CheckoutItem{{ProductID: dish.ID, Quantity: 1}},
		Phone: "+229 61 00 00 00",
		Place: "restaurant",
	})
	require.NoError(t, err)

	found, err := svc.Track(ctx, order.Reference, "+22961000000")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.Track(ctx, order.Reference, "+22961000001")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Track(ctx, "BR-00000000", "+22961000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutWithExplicitItemsKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	fish := env.addProduct(t, "Poisson braisé", 4000, true)
	drink := env.addProduct(t, "Bissap", 500, true)
	svc, carts := newTestCheckout(t, env)

	cartView, err := carts.Add(ctx, "", fish.ID, 2)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, CheckoutInput{
		CartID: cartView.ID,
		Items:  []CheckoutItem{{ProductID: drink.ID, Quantity: 1}},
		Phone:  "97000000",
		Place:  "restaurant",
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Bissap", order.Items[0].Name)

	kept, err := carts.Get(ctx, cartView.ID)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1)
	assert.Equal(t, fish.ID, kept.Items[0].ProductID)
	assert.Equal(t, 2, kept.Items[0].Quantity)
}
