package handler

import (
    "context"

    "github.com/iliyamo/gourmet-table/internal/model"
    "github.com/iliyamo/gourmet-table/internal/service"
)

type fakeBookings struct {
    occupiedFn     func(ctx context.Context, date string) (model.Occupancy, error)
    createFn       func(ctx context.Context, ownerID uint64, in service.CreateBookingInput) (model.Booking, error)
    listForOwnerFn func(ctx context.Context, ownerID uint64) ([]model.Booking, error)
    listAllFn      func(ctx context.Context) ([]model.Booking, error)
    updateStatusFn func(ctx context.Context, id, status string) (model.Booking, error)
    statsFn        func(ctx context.Context) (model.BookingStats, error)
}

func (f *fakeBookings) OccupiedSeats(ctx context.Context, date string) (model.Occupancy, error) {
    return f.occupiedFn(ctx, date)
}

func (f *fakeBookings) Create(ctx context.Context, ownerID uint64, in service.CreateBookingInput) (model.Booking, error) {
    return f.createFn(ctx, ownerID, in)
}

func (f *fakeBookings) ListForOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error) {
    return f.listForOwnerFn(ctx, ownerID)
}

func (f *fakeBookings) ListAll(ctx context.Context) ([]model.Booking, error) {
    return f.listAllFn(ctx)
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id, status string) (model.Booking, error) {
    return f.updateStatusFn(ctx, id, status)
}

func (f *fakeBookings) Stats(ctx context.Context) (model.BookingStats, error) {
    return f.statsFn(ctx)
}

type fakeCarts struct {
    addFn          func(ctx context.Context, ownerID, ref uint64, delta int) (service.CartView, error)
    removeFn       func(ctx context.Context, ownerID, ref uint64) error
    setFn          func(ctx context.Context, ownerID, ref uint64, qty float64) (service.CartView, error)
    mergeFn        func(ctx context.Context, ownerID uint64, guest model.Cart) (service.MergeResult, error)
    getFn          func(ctx context.Context, ownerID uint64) (service.CartView, error)
    guestAddFn     func(ctx context.Context, cart model.Cart, ref uint64, delta int) (model.Cart, error)
    guestSetFn     func(cart model.Cart, ref uint64, qty float64) (model.Cart, error)
    guestSummaryFn func(ctx context.Context, cart model.Cart) (service.CartView, error)
}

func (f *fakeCarts) AddItem(ctx context.Context, ownerID, ref uint64, delta int) (service.CartView, error) {
    return f.addFn(ctx, ownerID, ref, delta)
}

func (f *fakeCarts) RemoveItem(ctx context.Context, ownerID, ref uint64) error {
    return f.removeFn(ctx, ownerID, ref)
}

func (f *fakeCarts) SetQuantity(ctx context.Context, ownerID, ref uint64, qty float64) (service.CartView, error) {
    return f.setFn(ctx, ownerID, ref, qty)
}

func (f *fakeCarts) Merge(ctx context.Context, ownerID uint64, guest model.Cart) (service.MergeResult, error) {
    return f.mergeFn(ctx, ownerID, guest)
}

func (f *fakeCarts) Get(ctx context.Context, ownerID uint64) (service.CartView, error) {
    return f.getFn(ctx, ownerID)
}

func (f *fakeCarts) GuestAdd(ctx context.Context, cart model.Cart, ref uint64, delta int) (model.Cart, error) {
    return f.guestAddFn(ctx, cart, ref, delta)
}

func (f *fakeCarts) GuestSetQuantity(cart model.Cart, ref uint64, qty float64) (model.Cart, error) {
    return f.guestSetFn(cart, ref, qty)
}

func (f *fakeCarts) GuestRemove(cart model.Cart, ref uint64) model.Cart {
    return cart.Remove(ref)
}

func (f *fakeCarts) GuestSummary(ctx context.Context, cart model.Cart) (service.CartView, error) {
    return f.guestSummaryFn(ctx, cart)
}
