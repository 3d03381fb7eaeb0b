package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/iliyamo/gourmet-table/internal/config"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Open connects to the configured database, verifies the connection and
// creates missing tables.
func Open(cfg config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.DBDriver {
	case DriverSQLite:
		db, err = OpenSQLite(cfg.SQLitePath)
	default:
		db, err = OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Migrate(ctx, db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	// clientFoundRows=true -> RowsAffected counts matched rows, not changed rows
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)

	db, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens (creating if needed) a database file.  Writers are
// serialised through a single connection and transactions take the write
// lock up front, so concurrent requests queue instead of failing with
// SQLITE_BUSY.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Ping with timeout
func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// DriverName reports which supported driver backs db.
func DriverName(db *sql.DB) string {
	if _, ok := db.Driver().(*sqlite3.SQLiteDriver); ok {
		return DriverSQLite
	}
	return DriverMySQL
}

// ForUpdate is the row lock suffix for SELECTs inside a transaction.
// SQLite write transactions already hold the database lock and the
// dialect has no FOR UPDATE.
func ForUpdate(db *sql.DB) string {
	if DriverName(db) == DriverSQLite {
		return ""
	}
	return " FOR UPDATE"
}
