package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type stubSessionService struct {
	session    domain.Session
	loginFn    func(ctx context.Context, email, password string) (*domain.User, error)
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.User, error)
	refreshErr error
	loggedOut  bool
}

func (s *stubSessionService) Credential() (string, bool) {
	return s.session.Token, s.session.Authenticated()
}
func (s *stubSessionService) Current() domain.Session { return s.session }
func (s *stubSessionService) IsAuthenticated() bool { return s.session.Authenticated() }

func (s *stubSessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.loginFn(ctx, email, password)
	if err == nil {
		s.session = domain.Session{User: u, Token: "tok"}
	}
	return u, err
}

func (s *stubSessionService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	u, err := s.registerFn(ctx, reg)
	if err == nil {
		s.session = domain.Session{User: u, Token: "tok"}
	}
	return u, err
}

func (s *stubSessionService) Logout(context.Context) {
	s.loggedOut = true
	s.session = domain.Session{}
}

func (s *stubSessionService) RefreshCredential(context.Context) error { return s.refreshErr }

func (s *stubSessionService) UpdateProfile(_ context.Context, u domain.ProfileUpdate) (*domain.User, error) {
	user := *s.session.User
	user.FirstName = u.FirstName
	return &user, nil
}

func (s *stubSessionService) ChangePassword(context.Context, string, string) error { return nil }

var _ ports.SessionService = (*stubSessionService)(nil)

type stubCartService struct {
	mu        sync.Mutex
	cart      domain.Cart
	addErr    error
	added     []domain.MenuItem
	updated   map[int]int
	removed   []int
	fetched   int
	count     int
	different bool
}

func (s *stubCartService) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}
func (s *stubCartService) FetchCart(context.Context) { s.fetched++ }

func (s *stubCartService) AddItem(_ context.Context, item domain.MenuItem, qty int, _ string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, item)
	s.cart.Items = append(s.cart.Items, domain.CartItem{ID: len(s.cart.Items) + 1, MenuItemID: item.ID, Price: item.Price, Quantity: qty})
	s.cart.Subtotal += item.Price * float64(qty)
	return nil
}

func (s *stubCartService) UpdateItemQuantity(_ context.Context, id, qty int) error {
	if s.updated == nil {
		s.updated = map[int]int{}
	}
	s.updated[id] = qty
	return nil
}

func (s *stubCartService) RemoveItem(_ context.Context, id int) error {
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubCartService) Clear(context.Context) error {
	s.cart = domain.EmptyCart()
	return nil
}

func (s *stubCartService) Count(context.Context) int { return s.count }
func (s *stubCartService) ComputeTotals() domain.Totals { return s.cart.Totals() }
func (s *stubCartService) IsDifferentRestaurant(int) bool { return s.different }

var _ ports.CartService = (*stubCartService)(nil)

type stubCatalog struct {
	listFilter  *domain.RestaurantFilter
	searchQuery string
	degraded    bool
}

func (s *stubCatalog) ListRestaurants(_ context.Context, f domain.RestaurantFilter) ([]domain.Restaurant, bool) {
	s.listFilter = &f
	return domain.SampleRestaurants(), s.degraded
}

func (s *stubCatalog) Search(_ context.Context, q string) ([]domain.Restaurant, bool) {
	s.searchQuery = q
	return []domain.Restaurant{}, s.degraded
}

type stubCheckout struct {
	fn func(ctx context.Context, info domain.CustomerInfo) (*domain.PlacedOrder, error)
}

func (s stubCheckout) PlaceOrder(ctx context.Context, info domain.CustomerInfo) (*domain.PlacedOrder, error) {
	return s.fn(ctx, info)
}

type stubNotices struct{ pending []domain.Notice }

func (s *stubNotices) Drain() []domain.Notice {
	out := s.pending
	s.pending = nil
	if out == nil {
		out = []domain.Notice{}
	}
	return out
}
