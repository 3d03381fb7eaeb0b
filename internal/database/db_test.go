package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gourmet-table/internal/config"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	cfg := config.Config{DBDriver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "test.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	// A second run must not fail on existing tables.
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite))

	for _, table := range []string{"users", "bookings", "booking_seats", "menu_items", "menu_offers", "carts", "cart_items"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "uniq.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite))

	_, err = db.Exec(`INSERT INTO bookings (id, owner_id, contact_name, contact_email, contact_phone, service_date, service_time, reserved_seats, status, created_at, updated_at)
		VALUES ('b1', 1, 'n', 'e', 'p', '2025-06-01', '19:00', 'A1', 'Pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO booking_seats (service_date, seat_token, booking_id) VALUES ('2025-06-01', 'A1', 'b1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO booking_seats (service_date, seat_token, booking_id) VALUES ('2025-06-01', 'A1', 'b1')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(context.Canceled))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1213}))
}

func TestIsLockContention(t *testing.T) {
	assert.True(t, IsLockContention(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}))
	assert.True(t, IsLockContention(fmt.Errorf("claim seats: %w", &mysql.MySQLError{Number: 1205})))
	assert.True(t, IsLockContention(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.False(t, IsLockContention(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsLockContention(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsLockContention(nil))
}
