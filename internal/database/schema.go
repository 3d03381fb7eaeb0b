package database

import (
	"context"
	"database/sql"
	"fmt"
)

// booking_seats holds one row per seat of every booking that is not
// cancelled.  Its primary key (service_date, seat_token) is what stops two
// bookings from sharing a seat on the same day.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id CHAR(36) NOT NULL PRIMARY KEY,
		owner_id BIGINT UNSIGNED NOT NULL,
		contact_name VARCHAR(120) NOT NULL,
		contact_email VARCHAR(255) NOT NULL,
		contact_phone VARCHAR(40) NOT NULL,
		service_date CHAR(10) NOT NULL,
		service_time VARCHAR(16) NOT NULL,
		reserved_seats VARCHAR(1024) NOT NULL,
		note TEXT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'Pending',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_bookings_owner (owner_id, created_at),
		INDEX idx_bookings_date (service_date, status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		service_date CHAR(10) NOT NULL,
		seat_token VARCHAR(8) NOT NULL,
		booking_id CHAR(36) NOT NULL,
		PRIMARY KEY (service_date, seat_token),
		INDEX idx_booking_seats_booking (booking_id),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(160) NOT NULL,
		price_cents BIGINT NOT NULL,
		is_available TINYINT(1) NOT NULL DEFAULT 1
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS menu_offers (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		menu_item_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(160) NOT NULL DEFAULT '',
		offer_type VARCHAR(16) NOT NULL,
		discount_value BIGINT NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		INDEX idx_menu_offers_item (menu_item_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS carts (
		id CHAR(36) NOT NULL PRIMARY KEY,
		owner_id BIGINT UNSIGNED NOT NULL UNIQUE,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		cart_id CHAR(36) NOT NULL,
		product_ref BIGINT UNSIGNED NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (cart_id, product_ref),
		CONSTRAINT fk_cart_items_cart FOREIGN KEY (cart_id) REFERENCES carts(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'CUSTOMER',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id INTEGER NOT NULL,
		contact_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		contact_phone TEXT NOT NULL,
		service_date TEXT NOT NULL,
		service_time TEXT NOT NULL,
		reserved_seats TEXT NOT NULL,
		note TEXT,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings(owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(service_date, status)`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		service_date TEXT NOT NULL,
		seat_token TEXT NOT NULL,
		booking_id TEXT NOT NULL REFERENCES bookings(id),
		PRIMARY KEY (service_date, seat_token)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_seats_booking ON booking_seats(booking_id)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price_cents INTEGER NOT NULL,
		is_available BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS menu_offers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		menu_item_id INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		offer_type TEXT NOT NULL,
		discount_value INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_offers_item ON menu_offers(menu_item_id)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id INTEGER NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		cart_id TEXT NOT NULL REFERENCES carts(id),
		product_ref INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (cart_id, product_ref)
	)`,
}

// Migrate creates every table the service needs.  Statements are
// idempotent and safe to run on each start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
