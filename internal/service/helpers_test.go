package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/cache"
	"github.com/brinaregal/brina/internal/migrations"
	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/repository/sqlite"
	"github.com/brinaregal/brina/internal/support/hash"
)

var testLocation = time.FixedZone("WAT", 3600)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notifier.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notifier.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Event)
	}
	return out
}

type testEnv struct {
	store      *sqlite.Store
	cache      cache.Store
	hub        *async.EventHub
	notes      *recordingNotifier
	restaurant RestaurantService
	hasher     hash.Hasher
	logger     *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "brina.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db))

	restaurant, err := NewRestaurantService(RestaurantOptions{Name: "Brina'Régal", Location: testLocation})
	require.NoError(t, err)

	store := cache.NewMemoryStore(cache.Options{DefaultTTL: time.Hour})
	t.Cleanup(func() { store.Close() })

	hasher, err := hash.NewBcryptHasher(4)
	require.NoError(t, err)

	return &testEnv{
		store:      sqlite.NewStore(db),
		cache:      store,
		hub:        async.NewEventHub(8),
		notes:      &recordingNotifier{},
		restaurant: restaurant,
		hasher:     hasher,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) addProduct(t *testing.T, name string, price int64, available bool) *repository.Product {
	t.Helper()
	product, err := e.store.Products().Create(context.Background(), &repository.Product{
		Name:      name,
		Price:     price,
		Category:  "Plats",
		Available: available,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) addUser(t *testing.T, email, password string, admin bool) *repository.User {
	t.Helper()
	hashed, err := e.hasher.Hash(password)
	require.NoError(t, err)
	user, err := e.store.Users().Create(context.Background(), &repository.User{
		Name:      "Awa",
		Email:     email,
		Password:  hashed,
		IsAdmin:   admin,
		Status:    repository.UserStatusActive,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	})
	require.NoError(t, err)
	return user
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func receiveEvent(t *testing.T, ch <-chan async.Event) async.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return async.Event{}
	}
}
