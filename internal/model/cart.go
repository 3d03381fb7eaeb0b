package model

import (
	"errors"
	"sort"
)

// ErrLineNotFound is returned by SetQuantity when the product is not in
// the cart.
var ErrLineNotFound = errors.New("item not in cart")

// CartLine is one product and how many of it.  Quantity is always > 0
// inside a Cart.
type CartLine struct {
	ProductRef uint64 `json:"productRef"`
	Quantity   int    `json:"quantity"`
}

// Cart is a value: every operation returns a new cart and leaves the
// receiver untouched.  Lines are kept unique per product and sorted by
// product reference.  The zero value is an empty cart.
type Cart struct {
	Items []CartLine `json:"items"`
}

// NewCart builds a cart from arbitrary lines, summing repeated products
// and dropping lines whose quantity is not positive.
func NewCart(lines ...CartLine) Cart {
	var c Cart
	for _, l := range lines {
		c = c.Add(l.ProductRef, l.Quantity)
	}
	return c
}

func (c Cart) index(ref uint64) int {
	i := sort.Search(len(c.Items), func(i int) bool { return c.Items[i].ProductRef >= ref })
	if i < len(c.Items) && c.Items[i].ProductRef == ref {
		return i
	}
	return -1
}

func (c Cart) clone() Cart {
	items := make([]CartLine, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Quantity returns how many of ref the cart holds, 0 when absent.
func (c Cart) Quantity(ref uint64) int {
	if i := c.index(ref); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Add increments the line for ref by delta, inserting it when absent.
// A non-positive delta leaves the cart unchanged.
func (c Cart) Add(ref uint64, delta int) Cart {
	out := c.clone()
	if delta <= 0 {
		return out
	}
	if i := out.index(ref); i >= 0 {
		out.Items[i].Quantity += delta
		return out
	}
	i := sort.Search(len(out.Items), func(i int) bool { return out.Items[i].ProductRef >= ref })
	out.Items = append(out.Items, CartLine{})
	copy(out.Items[i+1:], out.Items[i:])
	out.Items[i] = CartLine{ProductRef: ref, Quantity: delta}
	return out
}

// Remove drops the line for ref.  Removing an absent product is a no-op.
func (c Cart) Remove(ref uint64) Cart {
	out := c.clone()
	if i := out.index(ref); i >= 0 {
		out.Items = append(out.Items[:i], out.Items[i+1:]...)
	}
	return out
}

// SetQuantity overwrites the quantity of an existing line; qty <= 0
// removes it.  ErrLineNotFound is returned when ref is not in the cart.
func (c Cart) SetQuantity(ref uint64, qty int) (Cart, error) {
	i := c.index(ref)
	if i < 0 {
		return c.clone(), ErrLineNotFound
	}
	if qty <= 0 {
		return c.Remove(ref), nil
	}
	out := c.clone()
	out.Items[i].Quantity = qty
	return out, nil
}

// TotalItemCount is the sum of all quantities.
func (c Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// ProductRefs lists the products in the cart in order.
func (c Cart) ProductRefs() []uint64 {
	out := make([]uint64, len(c.Items))
	for i, l := range c.Items {
		out[i] = l.ProductRef
	}
	return out
}
