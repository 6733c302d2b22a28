package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

var (
	_ ports.AuthAPI    = (*Client)(nil)
	_ ports.CartAPI    = (*Client)(nil)
	_ ports.OrderAPI   = (*Client)(nil)
	_ ports.CatalogAPI = (*Client)(nil)
)

// ── Catalog ───────────────────────────────────────────────────────────────────

// restaurantList accepts both a bare array and {"restaurants": [...]}.
type restaurantList []domain.Restaurant

func (l *restaurantList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, (*[]domain.Restaurant)(l))
	}
	var wrapped struct {
		Restaurants []domain.Restaurant `json:"restaurants"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Restaurants
	return nil
}

// ListRestaurants calls GET /restaurants.
func (c *Client) ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.CuisineType != "" {
		q.Set("cuisine_type", filter.CuisineType)
	}

	var out restaurantList
	if err := c.Do(ctx, Request{Op: "list_restaurants", Method: http.MethodGet, Path: "/restaurants", Query: q}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Restaurant{}, nil
	}
	return out, nil
}

// ── Auth ──────────────────────────────────────────────────────────────────────

// VerifyToken calls GET /auth/verify.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	var out authResponse
	if err := c.Do(ctx, Request{Op: "verify", Method: http.MethodGet, Path: "/auth/verify", Token: token}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "verify response carried no user"}
	}
	return out.User.toDomain(), nil
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.Do(ctx, Request{Op: "login", Method: http.MethodPost, Path: "/auth/login", Body: body}, &out); err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: out.User.toDomain(), Token: out.Token}, nil
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*ports.AuthResult, error) {
	var out authResponse
	if err := c.Do(ctx, Request{Op: "register", Method: http.MethodPost, Path: "/auth/register", Body: reg}, &out); err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: out.User.toDomain(), Token: out.Token}, nil
}

// Logout calls POST /auth/logout.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Do(ctx, Request{Op: "logout", Method: http.MethodPost, Path: "/auth/logout", Token: token}, nil)
}

// RefreshToken calls POST /auth/refresh and returns the new token.
func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	var out authResponse
	if err := c.Do(ctx, Request{Op: "refresh", Method: http.MethodPost, Path: "/auth/refresh", Token: token}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// UpdateProfile calls PUT /auth/profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	body := struct {
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
		Phone     string `json:"phone,omitempty"`
		Address   string `json:"address,omitempty"`
	}{update.FirstName, update.LastName, update.Phone, update.DefaultAddress}

	var out authResponse
	if err := c.Do(ctx, Request{Op: "update_profile", Method: http.MethodPut, Path: "/auth/profile", Token: token, Body: body}, &out); err != nil {
		return nil, err
	}
	return out.User.toDomain(), nil
}

// ChangePassword calls PUT /auth/change-password.
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{"current_password": currentPassword, "new_password": newPassword}
	return c.Do(ctx, Request{Op: "change_password", Method: http.MethodPut, Path: "/auth/change-password", Token: token, Body: body}, nil)
}

// ── Cart ──────────────────────────────────────────────────────────────────────

// GetCart calls GET /cart.
func (c *Client) GetCart(ctx context.Context, token string) (*domain.Cart, error) {
	var out struct {
		Cart *wireCart `json:"cart"`
	}
	if err := c.Do(ctx, Request{Op: "get_cart", Method: http.MethodGet, Path: "/cart", Token: token}, &out); err != nil {
		return nil, err
	}
	return out.Cart.toDomain(), nil
}

// AddToCart calls POST /cart/add.
func (c *Client) AddToCart(ctx context.Context, token string, in ports.AddToCartInput) error {
	body := struct {
		MenuItemID     int    `json:"menu_item_id"`
		Quantity       int    `json:"quantity"`
		Customizations string `json:"customizations"`
	}{in.MenuItemID, in.Quantity, in.Customizations}
	return c.Do(ctx, Request{Op: "add_to_cart", Method: http.MethodPost, Path: "/cart/add", Token: token, Body: body}, nil)
}

// UpdateCartItem calls PUT /cart/update/{id}.
func (c *Client) UpdateCartItem(ctx context.Context, token string, cartItemID, quantity int) error {
	body := map[string]int{"quantity": quantity}
	path := "/cart/update/" + strconv.Itoa(cartItemID)
	return c.Do(ctx, Request{Op: "update_cart_item", Method: http.MethodPut, Path: path, Token: token, Body: body}, nil)
}

// RemoveCartItem calls DELETE /cart/remove/{id}.
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int) error {
	path := "/cart/remove/" + strconv.Itoa(cartItemID)
	return c.Do(ctx, Request{Op: "remove_cart_item", Method: http.MethodDelete, Path: path, Token: token}, nil)
}

// ClearCart calls DELETE /cart/clear.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.Do(ctx, Request{Op: "clear_cart", Method: http.MethodDelete, Path: "/cart/clear", Token: token}, nil)
}

// CartCount calls GET /cart/count.
func (c *Client) CartCount(ctx context.Context, token string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.Do(ctx, Request{Op: "cart_count", Method: http.MethodGet, Path: "/cart/count", Token: token}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// ── Orders ────────────────────────────────────────────────────────────────────

// PlaceOrder calls POST /orders. The key is sent as Idempotency-Key.
func (c *Client) PlaceOrder(ctx context.Context, token, idempotencyKey string, req domain.OrderRequest) (*domain.PlacedOrder, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}

	// The order is returned either at the top level or under "order".
	var out struct {
		wirePlacedOrder
		Order *wirePlacedOrder `json:"order"`
	}
	if err := c.Do(ctx, Request{Op: "place_order", Method: http.MethodPost, Path: "/orders", Token: token, Body: req, Headers: headers}, &out); err != nil {
		return nil, err
	}
	if out.Order != nil {
		return out.Order.toDomain(), nil
	}
	return out.wirePlacedOrder.toDomain(), nil
}

// ActiveOrders calls GET /orders/customer/{id}/active.
func (c *Client) ActiveOrders(ctx context.Context, token string, customerID int) ([]domain.ActiveOrder, error) {
	var out struct {
		ActiveOrders []wireActiveOrder `json:"active_orders"`
	}
	path := fmt.Sprintf("/orders/customer/%d/active", customerID)
	if err := c.Do(ctx, Request{Op: "active_orders", Method: http.MethodGet, Path: path, Token: token}, &out); err != nil {
		return nil, err
	}

	orders := make([]domain.ActiveOrder, 0, len(out.ActiveOrders))
	for _, o := range out.ActiveOrders {
		orders = append(orders, o.toDomain())
	}
	return orders, nil
}

// OrderTracking calls GET /orders/{id}/tracking.
func (c *Client) OrderTracking(ctx context.Context, token string, orderID int) (*domain.Tracking, error) {
	var out struct {
		Tracking *wireTracking `json:"tracking"`
	}
	path := fmt.Sprintf("/orders/%d/tracking", orderID)
	if err := c.Do(ctx, Request{Op: "order_tracking", Method: http.MethodGet, Path: path, Token: token}, &out); err != nil {
		return nil, err
	}
	if out.Tracking == nil {
		return nil, &domain.NetworkError{Op: "order_tracking", Err: fmt.Errorf("response carried no tracking data")}
	}
	return out.Tracking.toDomain(), nil
}
