package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/gourmet-table/internal/model"
)

// MenuRepo reads the menu catalog.  The catalog is maintained elsewhere;
// this service never writes it.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// GetByID returns the item with its active offers.  ErrNotFound when no
// such item exists.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (model.MenuItem, error) {
	var it model.MenuItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_cents, is_available FROM menu_items WHERE id = ?`, id).
		Scan(&it.ID, &it.Name, &it.PriceCents, &it.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	if err != nil {
		return it, err
	}
	offers, err := r.offers(ctx, []uint64{id})
	if err != nil {
		return it, err
	}
	it.Offers = offers[id]
	return it, nil
}

// GetMany returns the items among ids that exist, keyed by id.
func (r *MenuRepo) GetMany(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error) {
	out := make(map[uint64]model.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	in, args := inList(ids)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price_cents, is_available FROM menu_items WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.PriceCents, &it.IsAvailable); err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	offers, err := r.offers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for id, it := range out {
		it.Offers = offers[id]
		out[id] = it
	}
	return out, nil
}

func (r *MenuRepo) offers(ctx context.Context, itemIDs []uint64) (map[uint64][]model.Offer, error) {
	in, args := inList(itemIDs)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, menu_item_id, title, offer_type, discount_value FROM menu_offers
		WHERE is_active = 1 AND menu_item_id IN (`+in+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64][]model.Offer{}
	for rows.Next() {
		var (
			o      model.Offer
			itemID uint64
			typ    string
		)
		if err := rows.Scan(&o.ID, &itemID, &o.Title, &typ, &o.DiscountValue); err != nil {
			return nil, err
		}
		o.Type = model.OfferType(typ)
		out[itemID] = append(out[itemID], o)
	}
	return out, rows.Err()
}

func inList(ids []uint64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "?" + strings.Repeat(",?", len(ids)-1), args
}
