// Package dbtest opens throwaway SQLite databases for tests and seeds the
// read-only tables this service does not write itself.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gourmet-table/internal/database"
)

// New returns a migrated database in a temp directory, closed when the
// test ends.  A file is used rather than :memory: so the single pooled
// connection can be recycled without losing data.
func New(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func SeedUser(t testing.TB, db *sql.DB, name, email string) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO users (name, email) VALUES (?, ?)`, name, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func SeedMenuItem(t testing.TB, db *sql.DB, name string, priceCents int64, available bool) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO menu_items (name, price_cents, is_available) VALUES (?, ?, ?)`, name, priceCents, available)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func SeedOffer(t testing.TB, db *sql.DB, itemID uint64, offerType string, value int64, active bool) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO menu_offers (menu_item_id, title, offer_type, discount_value, is_active) VALUES (?, ?, ?, ?, ?)`,
		itemID, offerType+" offer", offerType, value, active)
	require.NoError(t, err)
}

// DeleteMenuItem removes a product from the catalog, as an admin would.
func DeleteMenuItem(t testing.TB, db *sql.DB, id uint64) {
	t.Helper()
	_, err := db.Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	require.NoError(t, err)
}
