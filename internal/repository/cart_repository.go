package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gourmet-table/internal/database"
	"github.com/iliyamo/gourmet-table/internal/model"
)

// CartRepo stores one cart per owner.  Quantities are changed with single
// UPDATE statements that add to the stored value, never by writing back a
// value read earlier, so concurrent requests for the same owner cannot
// lose each other's increments.
type CartRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCartRepo returns a new CartRepo bound to the given database.
func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *CartRepo) DB() *sql.DB { return r.db }

// FindCartIDTx returns the owner's cart id, or ErrNotFound when the owner
// has never added anything.
func (r *CartRepo) FindCartIDTx(ctx context.Context, tx *sql.Tx, ownerID uint64) (string, error) {
	return findCartID(ctx, tx, ownerID)
}

func findCartID(ctx context.Context, q querier, ownerID uint64) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM carts WHERE owner_id = ?`, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

// EnsureCartTx returns the owner's cart id, creating the cart on first
// use.  When two requests create it at once the loser of the unique key
// on owner_id reads the winner's row.
func (r *CartRepo) EnsureCartTx(ctx context.Context, tx *sql.Tx, ownerID uint64) (string, error) {
	id, err := findCartID(ctx, tx, ownerID)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return id, err
	}
	id = uuid.NewString()
	now := r.now()
	_, err = tx.ExecContext(ctx, `INSERT INTO carts (id, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, ownerID, now, now)
	if err == nil {
		return id, nil
	}
	if database.IsUniqueViolation(err) {
		return findCartID(ctx, tx, ownerID)
	}
	return "", err
}

// AddQuantityTx adds delta to the line for productRef, inserting the line
// when it does not exist yet.  A line never grows past limit: when the sum
// would exceed it nothing changes and ErrQuantityLimit is returned.
func (r *CartRepo) AddQuantityTx(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64, delta, limit int) error {
	if delta > limit {
		return ErrQuantityLimit
	}
	for attempt := 0; attempt < 2; attempt++ {
		res, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = quantity + ? WHERE cart_id = ? AND product_ref = ? AND quantity + ? <= ?`,
			delta, cartID, productRef, delta, limit)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n > 0 {
			return r.touch(ctx, tx, cartID)
		}
		exists, err := lineExists(ctx, tx, cartID, productRef)
		if err != nil {
			return err
		}
		if exists {
			return ErrQuantityLimit
		}
		inserted, err := r.insertLine(ctx, tx, cartID, productRef, delta)
		if err != nil || inserted {
			return err
		}
		// Another request inserted the line between our UPDATE and INSERT.
	}
	return errors.New("cart line kept changing, giving up")
}

// AddQuantityUpToTx is AddQuantityTx for merges: a sum past limit is cut
// down to limit instead of refused.  clamped reports whether that happened.
func (r *CartRepo) AddQuantityUpToTx(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64, delta, limit int) (clamped bool, err error) {
	for attempt := 0; attempt < 2; attempt++ {
		err := r.AddQuantityTx(ctx, tx, cartID, productRef, delta, limit)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, ErrQuantityLimit) {
			return false, err
		}
		if delta > limit {
			if inserted, err := r.insertLine(ctx, tx, cartID, productRef, limit); err != nil || inserted {
				return inserted, err
			}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_ref = ?`, limit, cartID, productRef)
		if err != nil {
			return false, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return false, err
		} else if n > 0 {
			return true, r.touch(ctx, tx, cartID)
		}
	}
	return false, errors.New("cart line kept changing, giving up")
}

// insertLine adds a new line and reports false when one already exists.
func (r *CartRepo) insertLine(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64, qty int) (bool, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_ref, quantity) VALUES (?, ?, ?)`,
		cartID, productRef, qty)
	if database.IsUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, r.touch(ctx, tx, cartID)
}

func lineExists(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM cart_items WHERE cart_id = ? AND product_ref = ?`, cartID, productRef).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SetQuantityTx overwrites the quantity of an existing line.
// ErrNotFound when the line does not exist.
func (r *CartRepo) SetQuantityTx(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64, qty int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_ref = ?`, qty, cartID, productRef)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return r.touch(ctx, tx, cartID)
}

// RemoveLineTx deletes the line and reports whether it existed.
func (r *CartRepo) RemoveLineTx(ctx context.Context, tx *sql.Tx, cartID string, productRef uint64) (bool, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ? AND product_ref = ?`, cartID, productRef)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	return true, r.touch(ctx, tx, cartID)
}

// GetByOwner loads the owner's cart.  An owner without a cart gets an
// empty cart and an empty id.
func (r *CartRepo) GetByOwner(ctx context.Context, ownerID uint64) (string, model.Cart, error) {
	id, err := findCartID(ctx, r.db, ownerID)
	if errors.Is(err, ErrNotFound) {
		return "", model.Cart{Items: []model.CartLine{}}, nil
	}
	if err != nil {
		return "", model.Cart{}, err
	}
	cart, err := r.lines(ctx, r.db, id)
	return id, cart, err
}

func (r *CartRepo) lines(ctx context.Context, q querier, cartID string) (model.Cart, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT product_ref, quantity FROM cart_items WHERE cart_id = ? AND quantity > 0 ORDER BY product_ref`, cartID)
	if err != nil {
		return model.Cart{}, err
	}
	defer rows.Close()
	cart := model.Cart{Items: []model.CartLine{}}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ProductRef, &l.Quantity); err != nil {
			return model.Cart{}, err
		}
		cart.Items = append(cart.Items, l)
	}
	return cart, rows.Err()
}

func (r *CartRepo) touch(ctx context.Context, tx *sql.Tx, cartID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE carts SET updated_at = ? WHERE id = ?`, r.now(), cartID)
	return err
}
