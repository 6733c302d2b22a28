package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDeliveryFee applies when the cart has no restaurant or the
	// restaurant does not advertise a fee.
	DefaultDeliveryFee = 2.99
	// DefaultMinimumOrder applies when the restaurant does not advertise one.
	DefaultMinimumOrder = 15.00
)

// TaxRate is the flat sales tax applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.08")

// Restaurant is the catalog view of a restaurant.
type Restaurant struct {
	ID                    int     `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description,omitempty"`
	Address               string  `json:"address,omitempty"`
	Phone                 string  `json:"phone,omitempty"`
	CuisineType           string  `json:"cuisine_type,omitempty"`
	Rating                float64 `json:"rating,omitempty"`
	DeliveryFee           float64 `json:"delivery_fee"`
	MinimumOrder          float64 `json:"minimum_order"`
	EstimatedDeliveryTime int     `json:"estimated_delivery_time,omitempty"`
	IsActive              bool    `json:"is_active,omitempty"`
	ImageURL              string  `json:"image_url,omitempty"`
}

// MenuItem is what a customer picks from a restaurant's menu.
type MenuItem struct {
	ID           int     `json:"id"`
	RestaurantID int     `json:"restaurant_id,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
}

// CartItem is one line of the cart as computed by the server.
type CartItem struct {
	ID             int     `json:"id"`
	MenuItemID     int     `json:"menu_item_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	Customizations string  `json:"customizations,omitempty"`
	ItemTotal      float64 `json:"item_total"`
	ImageURL       string  `json:"image_url,omitempty"`
}

// LineTotal is unit price times quantity, rounded to cents.
func (i CartItem) LineTotal() float64 {
	return decimal.NewFromFloat(i.Price).
		Mul(decimal.NewFromInt(int64(i.Quantity))).
		Round(2).
		InexactFloat64()
}

// Cart is the customer's not-yet-ordered selection, bound to at most one restaurant.
type Cart struct {
	ID         int         `json:"id,omitempty"`
	Items      []CartItem  `json:"items"`
	TotalItems int         `json:"total_items"`
	Subtotal   float64     `json:"subtotal"`
	Restaurant *Restaurant `json:"restaurant"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

// EmptyCart returns a cart with no items and no restaurant.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

// Clone returns a deep copy so callers cannot mutate manager-owned state.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	if c.Restaurant != nil {
		r := *c.Restaurant
		out.Restaurant = &r
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// IsEmpty reports whether the cart holds no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IsDifferentRestaurant reports whether adding from restaurantID would mix
// restaurants. Deciding what to do about it is left to the caller.
func (c Cart) IsDifferentRestaurant(restaurantID int) bool {
	return c.Restaurant != nil && c.Restaurant.ID != restaurantID && len(c.Items) > 0
}

// DeliveryFee is the restaurant's fee or DefaultDeliveryFee.
func (c Cart) DeliveryFee() float64 {
	if c.Restaurant != nil && c.Restaurant.DeliveryFee > 0 {
		return c.Restaurant.DeliveryFee
	}
	return DefaultDeliveryFee
}

// MinimumOrder is the restaurant's minimum or DefaultMinimumOrder.
func (c Cart) MinimumOrder() float64 {
	if c.Restaurant != nil && c.Restaurant.MinimumOrder > 0 {
		return c.Restaurant.MinimumOrder
	}
	return DefaultMinimumOrder
}

// MinimumShortfall is how much more the customer must add before checkout.
func (c Cart) MinimumShortfall() float64 {
	diff := decimal.NewFromFloat(c.MinimumOrder()).Sub(decimal.NewFromFloat(c.Subtotal))
	if !diff.IsPositive() {
		return 0
	}
	return diff.Round(2).InexactFloat64()
}

// CheckMinimum returns a *MinimumOrderError while the subtotal is below the minimum.
func (c Cart) CheckMinimum() error {
	short := c.MinimumShortfall()
	if short > 0 {
		return &MinimumOrderError{Minimum: c.MinimumOrder(), Subtotal: c.Subtotal, Shortfall: short}
	}
	return nil
}

// Totals is the advisory price breakdown shown before checkout. The server
// remains authoritative for what is charged.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// ComputeTotals derives the breakdown for a subtotal and delivery fee:
// tax is round(subtotal * TaxRate, 2) and total is the sum of all three.
// Subtotal and total are reported in cents.
func ComputeTotals(subtotal, deliveryFee float64) Totals {
	sub := decimal.NewFromFloat(subtotal)
	fee := decimal.NewFromFloat(deliveryFee)
	tax := sub.Mul(TaxRate).Round(2)

	return Totals{
		Subtotal:    sub.Round(2).InexactFloat64(),
		DeliveryFee: fee.InexactFloat64(),
		Tax:         tax.InexactFloat64(),
		Total:       sub.Add(fee).Add(tax).Round(2).InexactFloat64(),
	}
}

// Totals computes the breakdown for the cart.
func (c Cart) Totals() Totals {
	return ComputeTotals(c.Subtotal, c.DeliveryFee())
}
