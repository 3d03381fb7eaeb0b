package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/model"
    "github.com/iliyamo/gourmet-table/internal/service"
)

// CartService is what the cart handlers need from the service layer.
type CartService interface {
    AddItem(ctx context.Context, ownerID, ref uint64, delta int) (service.CartView, error)
    RemoveItem(ctx context.Context, ownerID, ref uint64) error
    SetQuantity(ctx context.Context, ownerID, ref uint64, qty float64) (service.CartView, error)
    Merge(ctx context.Context, ownerID uint64, guest model.Cart) (service.MergeResult, error)
    Get(ctx context.Context, ownerID uint64) (service.CartView, error)
    GuestAdd(ctx context.Context, cart model.Cart, ref uint64, delta int) (model.Cart, error)
    GuestSetQuantity(cart model.Cart, ref uint64, qty float64) (model.Cart, error)
    GuestRemove(cart model.Cart, ref uint64) model.Cart
    GuestSummary(ctx context.Context, cart model.Cart) (service.CartView, error)
}

// CartHandler serves the signed-in cart and the anonymous cart helpers.
type CartHandler struct {
    Carts CartService
}

// NewCartHandler panics when svc is nil.
func NewCartHandler(svc CartService) *CartHandler {
    if svc == nil {
        panic("nil service passed to NewCartHandler")
    }
    return &CartHandler{Carts: svc}
}

// addItemRequest omits quantity to mean one.
type addItemRequest struct {
    ProductRef uint64 `json:"productRef"`
    Quantity   *int   `json:"quantity"`
}

func (r addItemRequest) delta() int {
    if r.Quantity == nil {
        return 1
    }
    return *r.Quantity
}

type setQuantityRequest struct {
    Quantity *float64 `json:"quantity"`
}

func (r setQuantityRequest) value() (float64, error) {
    if r.Quantity == nil {
        return 0, apperr.Validation("missing required fields: quantity")
    }
    return *r.Quantity, nil
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    var req addItemRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    if req.ProductRef == 0 {
        return apperr.Validation("missing required fields: productRef")
    }
    cart, err := h.Carts.AddItem(c.Request().Context(), ownerID, req.ProductRef, req.delta())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

// Get handles GET /cart.
func (h *CartHandler) Get(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    cart, err := h.Carts.Get(c.Request().Context(), ownerID)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

// SetQuantity handles PATCH /cart/items/:productRef.  A quantity of
// zero or less removes the line.
func (h *CartHandler) SetQuantity(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    ref, err := productRefParam(c)
    if err != nil {
        return err
    }
    var req setQuantityRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    qty, err := req.value()
    if err != nil {
        return err
    }
    cart, err := h.Carts.SetQuantity(c.Request().Context(), ownerID, ref, qty)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

// RemoveItem handles DELETE /cart/items/:productRef.  Removing a line
// that is not there still succeeds.
func (h *CartHandler) RemoveItem(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    ref, err := productRefParam(c)
    if err != nil {
        return err
    }
    if err := h.Carts.RemoveItem(c.Request().Context(), ownerID, ref); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "item removed from cart"})
}

// Merge handles POST /cart/merge, folding the anonymous cart sent in
// the body into the caller's cart.
func (h *CartHandler) Merge(c echo.Context) error {
    ownerID, err := currentOwner(c)
    if err != nil {
        return err
    }
    var guest model.Cart
    if err := bind(c, &guest); err != nil {
        return err
    }
    res, err := h.Carts.Merge(c.Request().Context(), ownerID, guest)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success": true,
        "cart":    res.Cart,
        "merged":  res.Merged,
        "skipped": res.Skipped,
        "clamped": res.Clamped,
    })
}
