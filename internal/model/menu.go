package model

// OfferType is how an offer reduces a menu price.
type OfferType string

const (
	OfferPercentage OfferType = "percentage" // DiscountValue is a percent, 0-100
	OfferFixed      OfferType = "fixed"      // DiscountValue is an amount in cents
)

// Offer is a discount attached to a menu item.
type Offer struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Type          OfferType `json:"offerType"`
	DiscountValue int64     `json:"discountValue"`
}

// MenuItem is a product a cart line may refer to.  The catalog is
// read-only for this service.
type MenuItem struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	PriceCents  int64   `json:"priceCents"`
	IsAvailable bool    `json:"isAvailable"`
	Offers      []Offer `json:"offers,omitempty"`
}
