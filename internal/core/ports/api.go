package ports

import (
	"context"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// AuthResult is what login, registration and refresh return.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthAPI is the remote authentication surface.
type AuthAPI interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, token string) (string, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
}

// AddToCartInput is the body of POST /cart/add.
type AddToCartInput struct {
	MenuItemID     int
	Quantity       int
	Customizations string
}

// CartAPI is the remote cart surface. Every call needs a bearer token.
type CartAPI interface {
	GetCart(ctx context.Context, token string) (*domain.Cart, error)
	AddToCart(ctx context.Context, token string, in AddToCartInput) error
	UpdateCartItem(ctx context.Context, token string, cartItemID, quantity int) error
	RemoveCartItem(ctx context.Context, token string, cartItemID int) error
	ClearCart(ctx context.Context, token string) error
	CartCount(ctx context.Context, token string) (int, error)
}

// OrderAPI is the remote order surface.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, token, idempotencyKey string, req domain.OrderRequest) (*domain.PlacedOrder, error)
	ActiveOrders(ctx context.Context, token string, customerID int) ([]domain.ActiveOrder, error)
	OrderTracking(ctx context.Context, token string, orderID int) (*domain.Tracking, error)
}

// CatalogAPI is the remote restaurant listing surface.
type CatalogAPI interface {
	ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error)
}
