package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/bootstrap"
)

func TestParseMenuAcceptsListAndDocument(t *testing.T) {
	list := []byte(`
- name: Attiéké poisson
  price: 2500
  category: plats
- name: Bissap
  price: 500
  category: boissons
  available: false
`)
	products, err := parseMenu(list)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Attiéké poisson", products[0].Name)
	assert.Equal(t, int64(2500), products[0].Price)
	require.NotNil(t, products[1].Available)
	assert.False(t, *products[1].Available)

	doc := []byte(`
products:
  - name: Amiwo
    price: 3000
    category: plats
    image_url: /uploads/plats/amiwo.jpg
`)
	products, err = parseMenu(doc)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "/uploads/plats/amiwo.jpg", products[0].ImageURL)
	assert.Nil(t, products[0].Available)

	_, err = parseMenu([]byte("title: nothing here\n"))
	assert.Error(t, err)
}

func TestCompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "brina.db")
	require.NoError(t, os.WriteFile(src, []byte("SQLite format 3\x00payload"), 0o600))

	gz := filepath.Join(dir, "backups", "brina.db.gz")
	require.NoError(t, compressFile(src, gz))

	out := filepath.Join(dir, "restored.db")
	require.NoError(t, decompressFile(gz, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "SQLite format 3\x00payload", string(data))

	cp := filepath.Join(dir, "copy.db")
	require.NoError(t, copyFile(src, cp))
	data, err = os.ReadFile(cp)
	require.NoError(t, err)
	assert.Equal(t, "SQLite format 3\x00payload", string(data))
}

func TestSnapshotDatabaseIncludesWALPages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "brina.db")

	db, err := bootstrap.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, `CREATE TABLE dishes(name TEXT NOT NULL)`)
	require.NoError(t, err)
	for _, name := range []string{"Amiwo", "Télibo", "Ademè"} {
		_, err = db.ExecContext(ctx, `INSERT INTO dishes(name) VALUES(?)`, name)
		require.NoError(t, err)
	}
	_, err = os.Stat(dbPath + "-wal")
	require.NoError(t, err)

	target := filepath.Join(dir, "brina.db.pre_restore_test")
	require.NoError(t, snapshotDatabase(ctx, dbPath, target))

	snap, err := bootstrap.OpenSQLite(target)
	require.NoError(t, err)
	defer snap.Close()
	var count int
	require.NoError(t, snap.QueryRowContext(ctx, `SELECT COUNT(*) FROM dishes`).Scan(&count))
	assert.Equal(t, 3, count)

	assert.Error(t, snapshotDatabase(ctx, dbPath, target))
}
