package handler

import (
    "context"
    "net/http"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/gourmet-table/internal/apperr"
    "github.com/iliyamo/gourmet-table/internal/model"
    "github.com/iliyamo/gourmet-table/internal/pricing"
    "github.com/iliyamo/gourmet-table/internal/service"
)

func viewOf(lines ...model.CartLine) service.CartView {
    s := pricing.Summary{Lines: []pricing.Line{}}
    for _, l := range lines {
        s.Lines = append(s.Lines, pricing.Line{Item: model.MenuItem{ID: l.ProductRef}, Quantity: l.Quantity})
        s.TotalItemCount += l.Quantity
    }
    return service.CartView{ID: "c-1", Summary: s}
}

func TestAddItem(t *testing.T) {
    var gotRef uint64
    var gotDelta int
    h := NewCartHandler(&fakeCarts{addFn: func(_ context.Context, owner, ref uint64, delta int) (service.CartView, error) {
        gotRef, gotDelta = ref, delta
        return viewOf(model.CartLine{ProductRef: ref, Quantity: delta}), nil
    }})

    rec := serve(h.AddItem, http.MethodPost, "/cart/items", `{"productRef":3,"quantity":2}`, "7")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, uint64(3), gotRef)
    assert.Equal(t, 2, gotDelta)
    cart := jsonBody(t, rec)["cart"].(map[string]any)
    assert.Equal(t, float64(2), cart["totalItemCount"])

    rec = serve(h.AddItem, http.MethodPost, "/cart/items", `{"productRef":3}`, "7")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 1, gotDelta, "quantity defaults to one")

    rec = serve(h.AddItem, http.MethodPost, "/cart/items", `{"quantity":2}`, "7")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_UnknownProduct(t *testing.T) {
    h := NewCartHandler(&fakeCarts{addFn: func(context.Context, uint64, uint64, int) (service.CartView, error) {
        return service.CartView{}, apperr.NotFound("menu item")
    }})

    rec := serve(h.AddItem, http.MethodPost, "/cart/items", `{"productRef":99}`, "7")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "menu item not found", jsonBody(t, rec)["message"])
}

func TestSetQuantity(t *testing.T) {
    var gotQty float64
    h := NewCartHandler(&fakeCarts{setFn: func(_ context.Context, _, ref uint64, qty float64) (service.CartView, error) {
        gotQty = qty
        if qty <= 0 {
            return viewOf(), nil
        }
        return viewOf(model.CartLine{ProductRef: ref, Quantity: int(qty)}), nil
    }})

    rec := serve(h.SetQuantity, http.MethodPatch, "/cart/items/3", `{"quantity":-5}`, "7", "productRef", "3")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, float64(-5), gotQty)
    assert.Empty(t, jsonBody(t, rec)["cart"].(map[string]any)["items"])

    rec = serve(h.SetQuantity, http.MethodPatch, "/cart/items/3", `{}`, "7", "productRef", "3")
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = serve(h.SetQuantity, http.MethodPatch, "/cart/items/x", `{"quantity":1}`, "7", "productRef", "x")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItem(t *testing.T) {
    calls := 0
    h := NewCartHandler(&fakeCarts{removeFn: func(context.Context, uint64, uint64) error {
        calls++
        return nil
    }})

    for i := 0; i < 2; i++ {
        rec := serve(h.RemoveItem, http.MethodDelete, "/cart/items/3", "", "7", "productRef", "3")
        require.Equal(t, http.StatusOK, rec.Code)
        assert.Equal(t, true, jsonBody(t, rec)["success"])
    }
    assert.Equal(t, 2, calls)
}

func TestMerge(t *testing.T) {
    var got model.Cart
    h := NewCartHandler(&fakeCarts{mergeFn: func(_ context.Context, _ uint64, guest model.Cart) (service.MergeResult, error) {
        got = guest
        return service.MergeResult{
            Cart:    viewOf(model.CartLine{ProductRef: 1, Quantity: 5}),
            Merged:  []uint64{1},
            Skipped: []uint64{2},
            Clamped: []uint64{1},
        }, nil
    }})

    rec := serve(h.Merge, http.MethodPost, "/cart/merge",
        `{"items":[{"productRef":1,"quantity":3},{"productRef":2,"quantity":1}]}`, "7")

    require.Equal(t, http.StatusOK, rec.Code)
    require.Len(t, got.Items, 2)
    assert.Equal(t, model.CartLine{ProductRef: 1, Quantity: 3}, got.Items[0])
    body := jsonBody(t, rec)
    assert.Equal(t, []any{float64(2)}, body["skipped"])
    assert.Equal(t, []any{float64(1)}, body["clamped"])
    assert.Equal(t, float64(5), body["cart"].(map[string]any)["totalItemCount"])
}

func TestGuestCart(t *testing.T) {
    h := NewCartHandler(&fakeCarts{
        guestAddFn: func(_ context.Context, cart model.Cart, ref uint64, delta int) (model.Cart, error) {
            return cart.Add(ref, delta), nil
        },
        guestSetFn: func(cart model.Cart, ref uint64, qty float64) (model.Cart, error) {
            return cart.SetQuantity(ref, int(qty))
        },
        guestSummaryFn: func(_ context.Context, cart model.Cart) (service.CartView, error) {
            return viewOf(cart.Items...), nil
        },
    })

    rec := serve(h.GuestAdd, http.MethodPost, "/cart/guest/items",
        `{"cart":{"items":[{"productRef":1,"quantity":2}]},"productRef":1,"quantity":3}`, "")
    require.Equal(t, http.StatusOK, rec.Code)
    items := jsonBody(t, rec)["cart"].(map[string]any)["items"].([]any)
    require.Len(t, items, 1)
    assert.Equal(t, float64(5), items[0].(map[string]any)["quantity"])

    rec = serve(h.GuestSetQuantity, http.MethodPatch, "/cart/guest/items/1",
        `{"cart":{"items":[{"productRef":1,"quantity":2}]},"quantity":0}`, "", "productRef", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, jsonBody(t, rec)["cart"].(map[string]any)["items"])

    rec = serve(h.GuestRemove, http.MethodDelete, "/cart/guest/items/1",
        `{"cart":{"items":[{"productRef":1,"quantity":2},{"productRef":4,"quantity":1}]}}`, "", "productRef", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    items = jsonBody(t, rec)["cart"].(map[string]any)["items"].([]any)
    require.Len(t, items, 1)
    assert.Equal(t, float64(4), items[0].(map[string]any)["productRef"])

    rec = serve(h.GuestSummary, http.MethodPost, "/cart/guest/summary",
        `{"cart":{"items":[{"productRef":1,"quantity":2},{"productRef":4,"quantity":1}]}}`, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, float64(3), jsonBody(t, rec)["cart"].(map[string]any)["totalItemCount"])
}
