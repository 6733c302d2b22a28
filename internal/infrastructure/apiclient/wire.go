package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// timeLayouts are the timestamp shapes the API emits: RFC 3339, naive ISO
// 8601 with and without fractions, and the HTTP date format.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	http.TimeFormat,
	time.RFC1123Z,
}

// apiTime decodes the API's timestamps. Naive values are taken as UTC.
type apiTime struct {
	time.Time
	valid bool
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = apiTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Some fields carry a number of minutes instead of a timestamp.
		*t = apiTime{}
		return nil
	}
	if s == "" {
		*t = apiTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = apiTime{Time: parsed.UTC(), valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t apiTime) ptr() *time.Time {
	if !t.valid {
		return nil
	}
	v := t.Time
	return &v
}

func (t apiTime) value() time.Time {
	if !t.valid {
		return time.Time{}
	}
	return t.Time
}

type wireUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	UserType  string `json:"user_type"`
}

func (u *wireUser) toDomain() *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		UserType:       u.UserType,
		DefaultAddress: u.Address,
	}
}

type authResponse struct {
	User  *wireUser `json:"user"`
	Token string    `json:"token"`
}

type wireCart struct {
	ID         int                `json:"id"`
	Items      []domain.CartItem  `json:"items"`
	TotalItems int                `json:"total_items"`
	Subtotal   float64            `json:"subtotal"`
	Restaurant *domain.Restaurant `json:"restaurant"`
	UpdatedAt  apiTime            `json:"updated_at"`
}

func (c *wireCart) toDomain() *domain.Cart {
	out := domain.EmptyCart()
	if c == nil {
		return &out
	}
	out.ID = c.ID
	if c.Items != nil {
		out.Items = c.Items
	}
	out.TotalItems = c.TotalItems
	out.Subtotal = c.Subtotal
	out.Restaurant = c.Restaurant
	out.UpdatedAt = c.UpdatedAt.ptr()
	return &out
}

type wireTimelineStep struct {
	Status      domain.OrderStatus `json:"status"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Timestamp   apiTime            `json:"timestamp"`
	Completed   bool               `json:"completed"`
	Estimated   bool               `json:"estimated"`
}

type wireTracking struct {
	OrderID               int                      `json:"order_id"`
	Status                domain.OrderStatus       `json:"status"`
	CreatedAt             apiTime                  `json:"created_at"`
	UpdatedAt             apiTime                  `json:"updated_at"`
	Restaurant            domain.TrackedRestaurant `json:"restaurant"`
	DeliveryAddress       string                   `json:"delivery_address"`
	TotalAmount           float64                  `json:"total_amount"`
	EstimatedDeliveryTime apiTime                  `json:"estimated_delivery_time"`
	DriverInfo            *domain.DriverInfo       `json:"driver_info"`
	Timeline              []wireTimelineStep       `json:"timeline"`
}

func (w *wireTracking) toDomain() *domain.Tracking {
	if w == nil {
		return nil
	}
	out := &domain.Tracking{
		OrderID:               w.OrderID,
		Status:                w.Status,
		CreatedAt:             w.CreatedAt.value(),
		UpdatedAt:             w.UpdatedAt.value(),
		Restaurant:            w.Restaurant,
		DeliveryAddress:       w.DeliveryAddress,
		TotalAmount:           w.TotalAmount,
		EstimatedDeliveryTime: w.EstimatedDeliveryTime.ptr(),
		DriverInfo:            w.DriverInfo,
		Timeline:              make([]domain.TimelineStep, 0, len(w.Timeline)),
	}
	for _, s := range w.Timeline {
		out.Timeline = append(out.Timeline, domain.TimelineStep{
			Status:      s.Status,
			Title:       s.Title,
			Description: s.Description,
			Timestamp:   s.Timestamp.value(),
			Completed:   s.Completed,
			Estimated:   s.Estimated,
		})
	}
	return out
}

type wireActiveOrder struct {
	ID                    int                `json:"id"`
	Status                domain.OrderStatus `json:"status"`
	CreatedAt             apiTime            `json:"created_at"`
	UpdatedAt             apiTime            `json:"updated_at"`
	RestaurantName        string             `json:"restaurant_name"`
	TotalAmount           float64            `json:"total_amount"`
	EstimatedDeliveryTime apiTime            `json:"estimated_delivery_time"`
	DeliveryAddress       string             `json:"delivery_address"`
}

func (w wireActiveOrder) toDomain() domain.ActiveOrder {
	return domain.ActiveOrder{
		ID:                    w.ID,
		Status:                w.Status,
		CreatedAt:             w.CreatedAt.value(),
		UpdatedAt:             w.UpdatedAt.value(),
		RestaurantName:        w.RestaurantName,
		TotalAmount:           w.TotalAmount,
		EstimatedDeliveryTime: w.EstimatedDeliveryTime.ptr(),
		DeliveryAddress:       w.DeliveryAddress,
	}
}

type wirePlacedOrder struct {
	ID          int                `json:"id"`
	OrderNumber string             `json:"order_number"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount float64            `json:"total_amount"`
	CreatedAt   apiTime            `json:"created_at"`
}

func (w wirePlacedOrder) toDomain() *domain.PlacedOrder {
	return &domain.PlacedOrder{
		ID:          w.ID,
		OrderNumber: w.OrderNumber,
		Status:      w.Status,
		TotalAmount: w.TotalAmount,
		CreatedAt:   w.CreatedAt.ptr(),
	}
}
