package domain

import "time"

// OrderStatus is the server-owned lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

var knownStatuses = map[OrderStatus]struct{}{
	StatusPlaced:    {},
	StatusPending:   {},
	StatusConfirmed: {},
	StatusPreparing: {},
	StatusReady:     {},
	StatusPickedUp:  {},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s belongs to the known vocabulary.
func (s OrderStatus) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether no further status changes can follow.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Label is the customer-facing wording for a status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPlaced, StatusPending:
		return "Order Placed"
	case StatusConfirmed:
		return "Confirmed"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready for Pickup"
	case StatusPickedUp:
		return "Out for Delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// TimelineStep is one entry of the tracking timeline.
type TimelineStep struct {
	Status      OrderStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Completed   bool        `json:"completed"`
	Estimated   bool        `json:"estimated,omitempty"`
}

// TrackedRestaurant is the restaurant summary embedded in tracking data.
type TrackedRestaurant struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// DriverInfo is present once a driver has been assigned.
type DriverInfo struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// Tracking is the read-only projection of an order returned by the tracking endpoint.
type Tracking struct {
	OrderID               int               `json:"order_id"`
	Status                OrderStatus       `json:"status"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	Restaurant            TrackedRestaurant `json:"restaurant"`
	DeliveryAddress       string            `json:"delivery_address"`
	TotalAmount           float64           `json:"total_amount"`
	EstimatedDeliveryTime *time.Time        `json:"estimated_delivery_time,omitempty"`
	DriverInfo            *DriverInfo       `json:"driver_info"`
	Timeline              []TimelineStep    `json:"timeline"`
}

// EstimatedDelivery returns the estimated delivered step time, if the
// timeline carries one.
func (t Tracking) EstimatedDelivery() (time.Time, bool) {
	for _, step := range t.Timeline {
		if step.Status == StatusDelivered && step.Estimated {
			return step.Timestamp, true
		}
	}
	return time.Time{}, false
}

// ActiveOrder is a row of the customer's in-progress orders list.
type ActiveOrder struct {
	ID                    int         `json:"id"`
	Status                OrderStatus `json:"status"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	RestaurantName        string      `json:"restaurant_name"`
	TotalAmount           float64     `json:"total_amount"`
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time,omitempty"`
	DeliveryAddress       string      `json:"delivery_address"`
}

// CustomerInfo is the checkout form.
type CustomerInfo struct {
	Name    string `json:"name"    validate:"required"`
	Phone   string `json:"phone"   validate:"required,phone"`
	Address string `json:"address" validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
}

// OrderLine is a cart line as submitted with an order.
type OrderLine struct {
	MenuItemID     int     `json:"menu_item_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	TotalPrice     float64 `json:"total_price"`
	Customizations string  `json:"customizations,omitempty"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	RestaurantID int          `json:"restaurant_id"`
	CustomerInfo CustomerInfo `json:"customer_info"`
	Items        []OrderLine  `json:"items"`
	Totals       Totals       `json:"totals"`
}

// PlacedOrder is the server's acknowledgement of a new order.
type PlacedOrder struct {
	ID          int         `json:"id"`
	OrderNumber string      `json:"order_number,omitempty"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   *time.Time  `json:"created_at,omitempty"`
}

// StatusObservation records the client seeing an order in a given status.
type StatusObservation struct {
	OrderID    int         `json:"order_id"`
	Status     OrderStatus `json:"status"`
	ObservedAt time.Time   `json:"observed_at"`
	Source     string      `json:"source"`
}
