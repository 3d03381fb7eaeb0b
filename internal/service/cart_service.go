package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/iliyamo/gourmet-table/internal/apperr"
	"github.com/iliyamo/gourmet-table/internal/metrics"
	"github.com/iliyamo/gourmet-table/internal/model"
	"github.com/iliyamo/gourmet-table/internal/pricing"
	"github.com/iliyamo/gourmet-table/internal/repository"
)

// maxLineQuantity bounds the total quantity of a single cart line.
const maxLineQuantity = 10000

// CartView is a priced cart as returned to clients.  UnavailableRefs lists
// lines whose product has left the catalog; they are kept but not priced.
type CartView struct {
	ID string `json:"id,omitempty"`
	pricing.Summary
	UnavailableRefs []uint64 `json:"unavailableRefs,omitempty"`
}

// MergeResult reports a merge.  Skipped lists anonymous lines dropped
// because their product no longer exists or cannot be ordered.  Clamped
// lists merged lines whose summed quantity was cut down to the line limit.
type MergeResult struct {
	Cart    CartView `json:"cart"`
	Merged  []uint64 `json:"merged"`
	Skipped []uint64 `json:"skipped"`
	Clamped []uint64 `json:"clamped"`
}

// CartService keeps one server cart per owner and operates on anonymous
// carts passed in by value.
type CartService struct {
	carts *repository.CartRepo
	menu  *repository.MenuRepo
	log   zerolog.Logger
}

func NewCartService(carts *repository.CartRepo, menu *repository.MenuRepo, log zerolog.Logger) *CartService {
	return &CartService{carts: carts, menu: menu, log: log.With().Str("component", "cart").Logger()}
}

// orderable returns the product when it exists and is available.
func (s *CartService) orderable(ctx context.Context, ref uint64) (model.MenuItem, error) {
	item, err := s.menu.GetByID(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return item, apperr.NotFound("menu item")
	}
	if err != nil {
		return item, apperr.Internal(err)
	}
	if !item.IsAvailable {
		return item, apperr.NotFound("menu item")
	}
	return item, nil
}

func lineLimitError(ref uint64) error {
	return apperr.Validationf("quantity must be at most %d", maxLineQuantity).
		WithDetails(map[string]any{"productRef": ref, "maxQuantity": maxLineQuantity})
}

func checkDelta(delta int) error {
	if delta < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	if delta > maxLineQuantity {
		return apperr.Validationf("quantity must be at most %d", maxLineQuantity)
	}
	return nil
}

// wholeQuantity turns a client supplied quantity into a line quantity.
// Non-finite and fractional values are refused.
func wholeQuantity(q float64) (int, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, apperr.Validation("quantity must be a finite number")
	}
	if q <= 0 {
		return 0, nil
	}
	if q != math.Trunc(q) {
		return 0, apperr.Validation("quantity must be a whole number")
	}
	if q > maxLineQuantity {
		return 0, apperr.Validationf("quantity must be at most %d", maxLineQuantity)
	}
	return int(q), nil
}

// AddItem adds delta units of ref to the owner's cart, creating the cart
// on first use.
func (s *CartService) AddItem(ctx context.Context, ownerID, ref uint64, delta int) (CartView, error) {
	if err := checkDelta(delta); err != nil {
		return CartView{}, err
	}
	if _, err := s.orderable(ctx, ref); err != nil {
		return CartView{}, err
	}

	tx, err := s.carts.DB().BeginTx(ctx, nil)
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	cartID, err := s.carts.EnsureCartTx(ctx, tx, ownerID)
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	if err := s.carts.AddQuantityTx(ctx, tx, cartID, ref, delta, maxLineQuantity); err != nil {
		if errors.Is(err, repository.ErrQuantityLimit) {
			return CartView{}, lineLimitError(ref)
		}
		return CartView{}, apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return CartView{}, apperr.Internal(err)
	}
	committed = true
	return s.Get(ctx, ownerID)
}

// RemoveItem deletes the line for ref.  Removing a product that is not in
// the cart, or from an owner without a cart, succeeds and changes nothing.
func (s *CartService) RemoveItem(ctx context.Context, ownerID, ref uint64) error {
	tx, err := s.carts.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	cartID, err := s.carts.FindCartIDTx(ctx, tx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if _, err := s.carts.RemoveLineTx(ctx, tx, cartID, ref); err != nil {
		return apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Internal(err)
	}
	committed = true
	return nil
}

// SetQuantity overwrites the quantity of a line already in the cart.  A
// quantity of zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, ownerID, ref uint64, qty float64) (CartView, error) {
	n, err := wholeQuantity(qty)
	if err != nil {
		return CartView{}, err
	}

	tx, err := s.carts.DB().BeginTx(ctx, nil)
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	cartID, err := s.carts.FindCartIDTx(ctx, tx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return CartView{}, apperr.Validation(model.ErrLineNotFound.Error())
	}
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	if n <= 0 {
		removed, err := s.carts.RemoveLineTx(ctx, tx, cartID, ref)
		if err != nil {
			return CartView{}, apperr.Internal(err)
		}
		if !removed {
			return CartView{}, apperr.Validation(model.ErrLineNotFound.Error())
		}
	} else if err := s.carts.SetQuantityTx(ctx, tx, cartID, ref, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CartView{}, apperr.Validation(model.ErrLineNotFound.Error())
		}
		return CartView{}, apperr.Internal(err)
	}
	if err := tx.Commit(); err != nil {
		return CartView{}, apperr.Internal(err)
	}
	committed = true
	return s.Get(ctx, ownerID)
}

// Merge folds an anonymous cart into the owner's server cart in one
// transaction.  Lines whose product is gone or unavailable are skipped
// and logged; every other line is added to the server cart.  A line whose
// sum passes the line limit is stored at the limit and listed in Clamped.
func (s *CartService) Merge(ctx context.Context, ownerID uint64, guest model.Cart) (MergeResult, error) {
	guest = model.NewCart(guest.Items...)
	result := MergeResult{Merged: []uint64{}, Skipped: []uint64{}, Clamped: []uint64{}}

	catalog, err := s.menu.GetMany(ctx, guest.ProductRefs())
	if err != nil {
		return result, apperr.Internal(err)
	}
	var mergeable []model.CartLine
	for _, l := range guest.Items {
		item, ok := catalog[l.ProductRef]
		if !ok || !item.IsAvailable {
			s.log.Info().Uint64("owner_id", ownerID).Uint64("product_ref", l.ProductRef).Msg("merge skipped product no longer on the menu")
			result.Skipped = append(result.Skipped, l.ProductRef)
			continue
		}
		mergeable = append(mergeable, l)
	}

	if len(mergeable) > 0 {
		tx, err := s.carts.DB().BeginTx(ctx, nil)
		if err != nil {
			return result, apperr.Internal(err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()
		cartID, err := s.carts.EnsureCartTx(ctx, tx, ownerID)
		if err != nil {
			return result, apperr.Internal(err)
		}
		for _, l := range mergeable {
			clamped, err := s.carts.AddQuantityUpToTx(ctx, tx, cartID, l.ProductRef, l.Quantity, maxLineQuantity)
			if err != nil {
				return result, apperr.Internal(err)
			}
			if clamped {
				s.log.Info().Uint64("owner_id", ownerID).Uint64("product_ref", l.ProductRef).Int("limit", maxLineQuantity).Msg("merge clamped line to quantity limit")
				result.Clamped = append(result.Clamped, l.ProductRef)
			}
			result.Merged = append(result.Merged, l.ProductRef)
		}
		if err := tx.Commit(); err != nil {
			return result, apperr.Internal(err)
		}
		committed = true
	}

	metrics.AddCartMerge(len(result.Merged), len(result.Skipped))
	s.log.Info().Uint64("owner_id", ownerID).Int("merged", len(result.Merged)).Int("skipped", len(result.Skipped)).Int("clamped", len(result.Clamped)).Msg("anonymous cart merged")

	view, err := s.Get(ctx, ownerID)
	if err != nil {
		return result, err
	}
	result.Cart = view
	return result, nil
}

// Get returns the owner's cart priced against the current catalog.
func (s *CartService) Get(ctx context.Context, ownerID uint64) (CartView, error) {
	id, cart, err := s.carts.GetByOwner(ctx, ownerID)
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	view, err := s.price(ctx, cart)
	view.ID = id
	return view, err
}

func (s *CartService) price(ctx context.Context, cart model.Cart) (CartView, error) {
	catalog, err := s.menu.GetMany(ctx, cart.ProductRefs())
	if err != nil {
		return CartView{}, apperr.Internal(err)
	}
	summary, missing := pricing.Summarize(cart, catalog)
	return CartView{Summary: summary, UnavailableRefs: missing}, nil
}

// The Guest methods operate on an anonymous cart held by the client.  The
// cart comes in as a value and a new value goes back; nothing is stored.

// GuestAdd adds delta units of ref to cart.
func (s *CartService) GuestAdd(ctx context.Context, cart model.Cart, ref uint64, delta int) (model.Cart, error) {
	cart = model.NewCart(cart.Items...)
	if err := checkDelta(delta); err != nil {
		return cart, err
	}
	if cart.Quantity(ref)+delta > maxLineQuantity {
		return cart, lineLimitError(ref)
	}
	if _, err := s.orderable(ctx, ref); err != nil {
		return cart, err
	}
	return cart.Add(ref, delta), nil
}

// GuestSetQuantity overwrites or, for qty <= 0, removes the line for ref.
func (s *CartService) GuestSetQuantity(cart model.Cart, ref uint64, qty float64) (model.Cart, error) {
	cart = model.NewCart(cart.Items...)
	n, err := wholeQuantity(qty)
	if err != nil {
		return cart, err
	}
	out, err := cart.SetQuantity(ref, n)
	if errors.Is(err, model.ErrLineNotFound) {
		return cart, apperr.Validation(err.Error())
	}
	return out, err
}

// GuestRemove drops the line for ref.
func (s *CartService) GuestRemove(cart model.Cart, ref uint64) model.Cart {
	return model.NewCart(cart.Items...).Remove(ref)
}

// GuestSummary prices an anonymous cart.
func (s *CartService) GuestSummary(ctx context.Context, cart model.Cart) (CartView, error) {
	return s.price(ctx, model.NewCart(cart.Items...))
}
