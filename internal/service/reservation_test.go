package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReservations(env *testEnv, now time.Time) ReservationService {
	svc := NewReservationService(env.store.Orders(), env.restaurant, env.notes, env.hub, env.logger)
	svc.(*reservationService).now = fixedClock(now)
	return svc
}

func TestReservationCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, testLocation)
	svc := newTestReservations(env, now)

	feed, cancel := env.hub.Subscribe()
	defer cancel()

	view, err := svc.Create(ctx, ReservationInput{
		Name:         "Fifamè",
		Phone:        "96 11 22 33",
		Date:         "2026-03-14",
		Time:         "19:30",
		Instructions: "Table en terrasse <script>x</script>",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderKindReservation, view.Kind)
	assert.Equal(t, OrderStatusReservation, view.Status)
	assert.Equal(t, 2, view.PartySize)
	assert.Equal(t, int64(0), view.Total)
	assert.Empty(t, view.Items)
	assert.Equal(t, "2026-03-14", view.ReservationDate)
	assert.Equal(t, "19:30", view.ReservationTime)
	assert.NotContains(t, view.Instructions, "<script>")

	event := receiveEvent(t, feed)
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, []string{EventReservationCreated}, env.notes.Events())

	admin := NewAdminOrderService(env.store.Orders(), nil, nil, nil, env.logger)
	confirmed, err := admin.Confirm(ctx, view.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, confirmed.Status)
}

func TestReservationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 20, 15, 0, 0, testLocation)
	svc := newTestReservations(env, now)
	base := ReservationInput{Name: "Sènan", Phone: "96112233", Date: "2026-03-15", Time: "20:00"}

	cases := []struct {
		name   string
		mutate func(in *ReservationInput)
		want   error
	}{
		{"missing name", func(in *ReservationInput) { in.Name = "  " }, ErrInvalidName},
		{"bad phone", func(in *ReservationInput) { in.Phone = "abc" }, ErrInvalidPhone},
		{"party too big", func(in *ReservationInput) { in.PartySize = 11 }, ErrInvalidPartySize},
		{"negative party", func(in *ReservationInput) { in.PartySize = -1 }, ErrInvalidPartySize},
		{"bad date", func(in *ReservationInput) { in.Date = "15/03/2026" }, ErrInvalidDate},
		{"past date", func(in *ReservationInput) { in.Date = "2026-03-13" }, ErrInvalidDate},
		{"slot outside hours", func(in *ReservationInput) { in.Time = "12:30" }, ErrInvalidTimeSlot},
		{"slot off grid", func(in *ReservationInput) { in.Time = "20:10" }, ErrInvalidTimeSlot},
		{"same day slot passed", func(in *ReservationInput) { in.Date = "2026-03-14"; in.Time = "20:00" }, ErrInvalidTimeSlot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	sameDay := base
	sameDay.Date = "2026-03-14"
	sameDay.Time = "20:30"
	_, err := svc.Create(ctx, sameDay)
	require.NoError(t, err)
}

func TestReservationSlots(t *testing.T) {
	env := newTestEnv(t)
	slots := newTestReservations(env, time.Now()).Slots()
	require.Len(t, slots, 22)
	assert.Equal(t, "13:00", slots[0])
	assert.Equal(t, "23:30", slots[len(slots)-1])
}

func TestRestaurantZones(t *testing.T) {
	_, err := NewRestaurantService(RestaurantOptions{Zones: []Zone{{Code: "a"}, {Code: "A"}}})
	assert.Error(t, err)

	_, err = NewRestaurantService(RestaurantOptions{FirstSlot: "22:00", LastSlot: "13:00"})
	assert.Error(t, err)

	svc, err := NewRestaurantService(RestaurantOptions{})
	require.NoError(t, err)
	zone, ok := svc.Zone(" HORS_ZONE ")
	require.True(t, ok)
	assert.True(t, zone.RequiresProof)
	_, ok = svc.Zone("porto-novo")
	assert.False(t, ok)
	assert.Equal(t, "UTC", svc.Info().Timezone)
}
