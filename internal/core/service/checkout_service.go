package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
	"github.com/superdelivery/storefront/internal/pkg/validate"
)

// CartSource is the part of the cart manager checkout depends on.
type CartSource interface {
	Cart() domain.Cart
	FetchCart(ctx context.Context)
}

type checkoutService struct {
	api       ports.OrderAPI
	creds     ports.CredentialSource
	cart      CartSource
	validator *validate.Validator
	newKey    func() string
	log       zerolog.Logger
}

// NewCheckoutService returns a CheckoutService implementation.
func NewCheckoutService(api ports.OrderAPI, creds ports.CredentialSource, cart CartSource, log zerolog.Logger) ports.CheckoutService {
	return &checkoutService{
		api:       api,
		creds:     creds,
		cart:      cart,
		validator: validate.New(),
		newKey:    uuid.NewString,
		log:       log.With().Str("component", "checkout").Logger(),
	}
}

// PlaceOrder validates the form and the cart, submits the order and
// re-syncs the cart, which the server empties on success.
func (s *checkoutService) PlaceOrder(ctx context.Context, info domain.CustomerInfo) (*domain.PlacedOrder, error) {
	token, ok := s.creds.Credential()
	if !ok {
		return nil, domain.ErrAuthRequired
	}

	info.Name = strings.TrimSpace(info.Name)
	info.Phone = strings.TrimSpace(info.Phone)
	info.Address = strings.TrimSpace(info.Address)
	info.Email = strings.TrimSpace(info.Email)
	if err := s.validator.Struct(info); err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	cart := s.cart.Cart()
	if cart.IsEmpty() || cart.Restaurant == nil {
		metrics.OrdersPlacedTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("items", domain.ErrCartEmpty.Error())
	}
	if err := cart.CheckMinimum(); err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("below_minimum").Inc()
		return nil, err
	}

	req := domain.OrderRequest{
		RestaurantID: cart.Restaurant.ID,
		CustomerInfo: info,
		Items:        make([]domain.OrderLine, 0, len(cart.Items)),
		Totals:       cart.Totals(),
	}
	for _, it := range cart.Items {
		req.Items = append(req.Items, domain.OrderLine{
			MenuItemID:     it.MenuItemID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPrice:      it.Price,
			TotalPrice:     it.LineTotal(),
			Customizations: it.Customizations,
		})
	}

	key := s.newKey()
	order, err := s.api.PlaceOrder(ctx, token, key, req)
	if err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("place order: %w", err)
	}

	metrics.OrdersPlacedTotal.WithLabelValues("ok").Inc()
	s.log.Info().
		Int("order_id", order.ID).
		Int("restaurant_id", req.RestaurantID).
		Float64("total", req.Totals.Total).
		Str("idempotency_key", key).
		Msg("order placed")

	s.cart.FetchCart(ctx)
	return order, nil
}
