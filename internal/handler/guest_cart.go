package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/model"
)

// The guest endpoints keep no state.  The client posts the cart it holds
// and stores the cart it gets back.

type guestAddRequest struct {
    Cart model.Cart `json:"cart"`
    addItemRequest
}

type guestSetRequest struct {
    Cart model.Cart `json:"cart"`
    setQuantityRequest
}

type guestCartRequest struct {
    Cart model.Cart `json:"cart"`
}

// GuestAdd handles POST /cart/guest/items.
func (h *CartHandler) GuestAdd(c echo.Context) error {
    var req guestAddRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    if req.ProductRef == 0 {
        return apperr.Validation("missing required fields: productRef")
    }
    cart, err := h.Carts.GuestAdd(c.Request().Context(), req.Cart, req.ProductRef, req.delta())
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

// GuestSetQuantity handles PATCH /cart/guest/items/:productRef.
func (h *CartHandler) GuestSetQuantity(c echo.Context) error {
    ref, err := productRefParam(c)
    if err != nil {
        return err
    }
    var req guestSetRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    qty, err := req.value()
    if err != nil {
        return err
    }
    cart, err := h.Carts.GuestSetQuantity(req.Cart, ref, qty)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": cart})
}

// GuestRemove handles DELETE /cart/guest/items/:productRef.
func (h *CartHandler) GuestRemove(c echo.Context) error {
    ref, err := productRefParam(c)
    if err != nil {
        return err
    }
    var req guestCartRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": h.Carts.GuestRemove(req.Cart, ref)})
}

// GuestSummary handles POST /cart/guest/summary and prices the cart
// with current menu prices and offers.
func (h *CartHandler) GuestSummary(c echo.Context) error {
    var req guestCartRequest
    if err := bind(c, &req); err != nil {
        return err
    }
    view, err := h.Carts.GuestSummary(c.Request().Context(), req.Cart)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "cart": view})
}
