package ports

import (
	"context"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// Notifier delivers transient, user-facing notices.
type Notifier interface {
	Notify(n domain.Notice)
}

// CredentialSource exposes the current bearer credential to other services.
type CredentialSource interface {
	Credential() (string, bool)
}

// ObservationRecorder receives order status changes seen by the tracker.
type ObservationRecorder interface {
	Record(ctx context.Context, obs domain.StatusObservation) error
}

// SessionService is the use-case surface of the session manager.
type SessionService interface {
	CredentialSource
	Current() domain.Session
	IsAuthenticated() bool
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context)
	RefreshCredential(ctx context.Context) error
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

// CartService is the use-case surface of the cart manager.
type CartService interface {
	Cart() domain.Cart
	FetchCart(ctx context.Context)
	AddItem(ctx context.Context, item domain.MenuItem, quantity int, customizations string) error
	UpdateItemQuantity(ctx context.Context, cartItemID, quantity int) error
	RemoveItem(ctx context.Context, cartItemID int) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) int
	ComputeTotals() domain.Totals
	IsDifferentRestaurant(restaurantID int) bool
}

// CheckoutService places orders from the current cart.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, info domain.CustomerInfo) (*domain.PlacedOrder, error)
}

// CatalogService lists and searches restaurants.
type CatalogService interface {
	ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, bool)
	Search(ctx context.Context, query string) ([]domain.Restaurant, bool)
}
