package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
)

// CartService owns the signed-in customer's cart. The server is the source
// of truth: every mutation is followed by a full re-fetch.
//
// Fetches are numbered. A response is applied only when its number is newer
// than the last applied one, so a slow early fetch cannot overwrite a later one.
type CartService struct {
	api   ports.CartAPI
	creds ports.CredentialSource
	log   zerolog.Logger

	mu      sync.RWMutex
	cart    domain.Cart
	issued  uint64
	applied uint64
}

var _ ports.CartService = (*CartService)(nil)

// NewCartService returns a cart manager starting with an empty cart.
func NewCartService(api ports.CartAPI, creds ports.CredentialSource, log zerolog.Logger) *CartService {
	return &CartService{
		api:   api,
		creds: creds,
		log:   log.With().Str("component", "cart").Logger(),
		cart:  domain.EmptyCart(),
	}
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// OnSessionChange resets the cart on sign-out and loads it on sign-in.
func (s *CartService) OnSessionChange(ctx context.Context, sess domain.Session) {
	if !sess.Authenticated() {
		s.Reset()
		return
	}
	s.FetchCart(ctx)
}

// Reset empties the cart locally and invalidates fetches still in flight.
func (s *CartService) Reset() {
	s.mu.Lock()
	s.cart = domain.EmptyCart()
	s.applied = s.issued
	s.mu.Unlock()
}

// FetchCart replaces the cart with the server's copy. It does nothing while
// anonymous; failures are logged and the previous cart is kept.
func (s *CartService) FetchCart(ctx context.Context) {
	token, ok := s.creds.Credential()
	if !ok {
		return
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	cart, err := s.api.GetCart(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to fetch cart")
		return
	}

	next := domain.EmptyCart()
	if cart != nil {
		next = cart.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		metrics.CartStaleResponsesTotal.Inc()
		s.log.Debug().Uint64("seq", seq).Uint64("applied", s.applied).Msg("discarding stale cart response")
		return
	}
	s.applied = seq
	s.cart = next
}

// AddItem adds quantity units of item to the cart.
func (s *CartService) AddItem(ctx context.Context, item domain.MenuItem, quantity int, customizations string) error {
	token, ok := s.creds.Credential()
	if !ok {
		metrics.CartMutationsTotal.WithLabelValues("add", "auth_required").Inc()
		return domain.ErrAuthRequired
	}
	if item.ID <= 0 {
		metrics.CartMutationsTotal.WithLabelValues("add", "invalid").Inc()
		return domain.NewValidationError("menu_item_id", "menu item is required")
	}
	if quantity < 1 {
		metrics.CartMutationsTotal.WithLabelValues("add", "invalid").Inc()
		return domain.NewValidationError("quantity", "quantity must be at least 1")
	}

	in := ports.AddToCartInput{MenuItemID: item.ID, Quantity: quantity, Customizations: customizations}
	if err := s.api.AddToCart(ctx, token, in); err != nil {
		metrics.CartMutationsTotal.WithLabelValues("add", "error").Inc()
		return fmt.Errorf("add to cart: %w", err)
	}

	metrics.CartMutationsTotal.WithLabelValues("add", "ok").Inc()
	s.log.Info().Int("menu_item_id", item.ID).Int("quantity", quantity).Msg("item added")
	s.FetchCart(ctx)
	return nil
}

// UpdateItemQuantity sets the quantity of a cart line. Removing a line is
// done with RemoveItem, so quantities below 1 are rejected.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartItemID, quantity int) error {
	token, ok := s.creds.Credential()
	if !ok {
		metrics.CartMutationsTotal.WithLabelValues("update", "auth_required").Inc()
		return domain.ErrAuthRequired
	}
	if quantity < 1 {
		metrics.CartMutationsTotal.WithLabelValues("update", "invalid").Inc()
		return domain.NewValidationError("quantity", "quantity must be at least 1")
	}

	if err := s.api.UpdateCartItem(ctx, token, cartItemID, quantity); err != nil {
		metrics.CartMutationsTotal.WithLabelValues("update", "error").Inc()
		return fmt.Errorf("update cart item %d: %w", cartItemID, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("update", "ok").Inc()
	s.FetchCart(ctx)
	return nil
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, cartItemID int) error {
	token, ok := s.creds.Credential()
	if !ok {
		metrics.CartMutationsTotal.WithLabelValues("remove", "auth_required").Inc()
		return domain.ErrAuthRequired
	}

	if err := s.api.RemoveCartItem(ctx, token, cartItemID); err != nil {
		metrics.CartMutationsTotal.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("remove cart item %d: %w", cartItemID, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("remove", "ok").Inc()
	s.FetchCart(ctx)
	return nil
}

// Clear empties the cart on the server.
func (s *CartService) Clear(ctx context.Context) error {
	token, ok := s.creds.Credential()
	if !ok {
		metrics.CartMutationsTotal.WithLabelValues("clear", "auth_required").Inc()
		return domain.ErrAuthRequired
	}

	if err := s.api.ClearCart(ctx, token); err != nil {
		metrics.CartMutationsTotal.WithLabelValues("clear", "error").Inc()
		return fmt.Errorf("clear cart: %w", err)
	}

	metrics.CartMutationsTotal.WithLabelValues("clear", "ok").Inc()
	s.FetchCart(ctx)
	return nil
}

// Count asks the server for the number of units in the cart. It returns 0
// while anonymous or when the call fails.
func (s *CartService) Count(ctx context.Context) int {
	token, ok := s.creds.Credential()
	if !ok {
		return 0
	}
	n, err := s.api.CartCount(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to fetch cart count")
		return 0
	}
	return n
}

// ComputeTotals returns the advisory price breakdown of the current cart.
func (s *CartService) ComputeTotals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Totals()
}

// IsDifferentRestaurant reports whether adding from restaurantID would mix
// restaurants in the cart.
func (s *CartService) IsDifferentRestaurant(restaurantID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.IsDifferentRestaurant(restaurantID)
}

// MinimumShortfall is how much must be added before checkout is allowed.
func (s *CartService) MinimumShortfall() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.MinimumShortfall()
}

// CanCheckout reports whether the cart is non-empty and meets the minimum.
func (s *CartService) CanCheckout() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cart.IsEmpty() && s.cart.CheckMinimum() == nil
}
