// Package pricing computes menu prices after offers.  All amounts are
// integer cents; percentage discounts round half up to the nearest cent.
package pricing

import "github.com/iliyamo/gourmet-table/internal/model"

// Discount is how many cents offer takes off price.  Unknown offer types
// and negative values discount nothing; a fixed discount never exceeds
// the price.
func Discount(price int64, offer model.Offer) int64 {
	if price <= 0 || offer.DiscountValue <= 0 {
		return 0
	}
	switch offer.Type {
	case model.OfferPercentage:
		pct := offer.DiscountValue
		if pct > 100 {
			pct = 100
		}
		return (price*pct + 50) / 100
	case model.OfferFixed:
		return min(offer.DiscountValue, price)
	}
	return 0
}

// BestOffer picks the offer with the largest discount for price.  Ties
// keep the first offer listed.  ok is false when no offer discounts
// anything.
func BestOffer(price int64, offers []model.Offer) (best model.Offer, ok bool) {
	var top int64
	for _, o := range offers {
		if d := Discount(price, o); d > top {
			best, top, ok = o, d, true
		}
	}
	return best, ok
}

// EffectivePrice is the unit price of item after its best offer, never
// below zero.
func EffectivePrice(item model.MenuItem) int64 {
	best, ok := BestOffer(item.PriceCents, item.Offers)
	if !ok {
		return max(item.PriceCents, 0)
	}
	return max(item.PriceCents-Discount(item.PriceCents, best), 0)
}

// Line is a priced cart line.
type Line struct {
	Item           model.MenuItem `json:"product"`
	Quantity       int            `json:"quantity"`
	UnitPriceCents int64          `json:"unitPriceCents"`
	AppliedOffer   *model.Offer   `json:"appliedOffer,omitempty"`
	LineTotalCents int64          `json:"lineTotalCents"`
	SavingsCents   int64          `json:"savingsCents"`
}

// PriceLine prices qty units of item.
func PriceLine(item model.MenuItem, qty int) Line {
	l := Line{Item: item, Quantity: qty, UnitPriceCents: EffectivePrice(item)}
	if best, ok := BestOffer(item.PriceCents, item.Offers); ok {
		l.AppliedOffer = &best
	}
	l.LineTotalCents = l.UnitPriceCents * int64(qty)
	l.SavingsCents = (max(item.PriceCents, 0) - l.UnitPriceCents) * int64(qty)
	return l
}

// Summary is a fully priced cart.
type Summary struct {
	Lines          []Line `json:"items"`
	TotalItemCount int    `json:"totalItemCount"`
	LineTotalCents int64  `json:"lineTotalCents"`
	SavingsCents   int64  `json:"savingsCents"`
}

// Summarize prices every line of cart whose product is in catalog.
// Lines for products missing from catalog are returned in missing and add
// nothing to the money totals.  TotalItemCount counts every line.
func Summarize(cart model.Cart, catalog map[uint64]model.MenuItem) (s Summary, missing []uint64) {
	s.Lines = []Line{}
	s.TotalItemCount = cart.TotalItemCount()
	for _, l := range cart.Items {
		item, ok := catalog[l.ProductRef]
		if !ok {
			missing = append(missing, l.ProductRef)
			continue
		}
		pl := PriceLine(item, l.Quantity)
		s.Lines = append(s.Lines, pl)
		s.LineTotalCents += pl.LineTotalCents
		s.SavingsCents += pl.SavingsCents
	}
	return s, missing
}
