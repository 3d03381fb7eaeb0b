// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell
// "nothing there" apart from "someone else got there first" without
// inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrSeatTaken is returned when claiming a seat that another active
// booking already holds on the same service date.
var ErrSeatTaken = errors.New("seat already taken")

// ErrQuantityLimit is returned when a cart line would grow past its
// allowed quantity.
var ErrQuantityLimit = errors.New("cart line quantity limit reached")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

