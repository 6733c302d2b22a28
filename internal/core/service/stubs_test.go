package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Auth API
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	mu sync.Mutex

	verifyFn   func(token string) (*domain.User, error)
	loginFn    func(email, password string) (*ports.AuthResult, error)
	registerFn func(reg domain.Registration) (*ports.AuthResult, error)
	logoutErr  error
	refreshFn  func(token string) (string, error)
	profileFn  func(update domain.ProfileUpdate) (*domain.User, error)
	passwordFn func(current, next string) error

	calls []string
}

func (a *stubAuthAPI) called(name string) {
	a.mu.Lock()
	a.calls = append(a.calls, name)
	a.mu.Unlock()
}

func (a *stubAuthAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *stubAuthAPI) VerifyToken(_ context.Context, token string) (*domain.User, error) {
	a.called("verify")
	if a.verifyFn == nil {
		return nil, &domain.APIError{Status: 401, Message: "invalid token"}
	}
	return a.verifyFn(token)
}

func (a *stubAuthAPI) Login(_ context.Context, email, password string) (*ports.AuthResult, error) {
	a.called("login")
	return a.loginFn(email, password)
}

func (a *stubAuthAPI) Register(_ context.Context, reg domain.Registration) (*ports.AuthResult, error) {
	a.called("register")
	return a.registerFn(reg)
}

func (a *stubAuthAPI) Logout(_ context.Context, _ string) error {
	a.called("logout")
	return a.logoutErr
}

func (a *stubAuthAPI) RefreshToken(_ context.Context, token string) (string, error) {
	a.called("refresh")
	return a.refreshFn(token)
}

func (a *stubAuthAPI) UpdateProfile(_ context.Context, _ string, update domain.ProfileUpdate) (*domain.User, error) {
	a.called("profile")
	return a.profileFn(update)
}

func (a *stubAuthAPI) ChangePassword(_ context.Context, _ string, current, next string) error {
	a.called("password")
	return a.passwordFn(current, next)
}

// ---------------------------------------------------------------------------
// Cart API: a tiny in-memory server cart.
// ---------------------------------------------------------------------------

type stubCartAPI struct {
	mu sync.Mutex

	restaurant *domain.Restaurant
	menu       map[int]domain.MenuItem
	items      []domain.CartItem
	nextID     int

	getErr    error
	mutateErr error
	count     int
	countErr  error

	calls int
}

func newStubCartAPI(r *domain.Restaurant, menu ...domain.MenuItem) *stubCartAPI {
	m := make(map[int]domain.MenuItem, len(menu))
	for _, it := range menu {
		m[it.ID] = it
	}
	return &stubCartAPI{restaurant: r, menu: m, nextID: 100}
}

func (c *stubCartAPI) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *stubCartAPI) snapshot() *domain.Cart {
	cart := domain.EmptyCart()
	var sub float64
	for _, it := range c.items {
		cart.Items = append(cart.Items, it)
		sub += it.ItemTotal
		cart.TotalItems += it.Quantity
	}
	cart.Subtotal = math.Round(sub*100) / 100
	if len(c.items) > 0 {
		cart.Restaurant = c.restaurant
	}
	return &cart
}

func (c *stubCartAPI) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.snapshot(), nil
}

func (c *stubCartAPI) AddToCart(_ context.Context, _ string, in ports.AddToCartInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.mutateErr != nil {
		return c.mutateErr
	}
	m := c.menu[in.MenuItemID]
	c.nextID++
	c.items = append(c.items, domain.CartItem{
		ID:         c.nextID,
		MenuItemID: m.ID,
		Name:       m.Name,
		Price:      m.Price,
		Quantity:   in.Quantity,
		ItemTotal:  domain.CartItem{Price: m.Price, Quantity: in.Quantity}.LineTotal(),
	})
	return nil
}

func (c *stubCartAPI) UpdateCartItem(_ context.Context, _ string, id, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.mutateErr != nil {
		return c.mutateErr
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = quantity
			c.items[i].ItemTotal = c.items[i].LineTotal()
			return nil
		}
	}
	return &domain.APIError{Status: 404, Message: "Cart item not found"}
}

func (c *stubCartAPI) RemoveCartItem(_ context.Context, _ string, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.mutateErr != nil {
		return c.mutateErr
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return &domain.APIError{Status: 404, Message: "Cart item not found"}
}

func (c *stubCartAPI) ClearCart(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.mutateErr != nil {
		return c.mutateErr
	}
	c.items = nil
	return nil
}

func (c *stubCartAPI) CartCount(_ context.Context, _ string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.count, c.countErr
}

// ---------------------------------------------------------------------------
// Order API
// ---------------------------------------------------------------------------

type stubOrderAPI struct {
	mu sync.Mutex

	placeFn    func(key string, req domain.OrderRequest) (*domain.PlacedOrder, error)
	trackingFn func(call int) (*domain.Tracking, error)
	activeFn   func(call int) ([]domain.ActiveOrder, error)

	placeKeys     []string
	trackingCalls int
	activeCalls   int
}

func (o *stubOrderAPI) PlaceOrder(_ context.Context, _ string, key string, req domain.OrderRequest) (*domain.PlacedOrder, error) {
	o.mu.Lock()
	o.placeKeys = append(o.placeKeys, key)
	o.mu.Unlock()
	return o.placeFn(key, req)
}

func (o *stubOrderAPI) ActiveOrders(_ context.Context, _ string, _ int) ([]domain.ActiveOrder, error) {
	o.mu.Lock()
	o.activeCalls++
	n := o.activeCalls
	o.mu.Unlock()
	return o.activeFn(n)
}

func (o *stubOrderAPI) OrderTracking(_ context.Context, _ string, _ int) (*domain.Tracking, error) {
	o.mu.Lock()
	o.trackingCalls++
	n := o.trackingCalls
	o.mu.Unlock()
	return o.trackingFn(n)
}

func (o *stubOrderAPI) TrackingCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trackingCalls
}

func (o *stubOrderAPI) ActiveCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeCalls
}

// ---------------------------------------------------------------------------
// Catalog API
// ---------------------------------------------------------------------------

type stubCatalogAPI struct {
	listFn func(filter domain.RestaurantFilter) ([]domain.Restaurant, error)
	calls  int
}

func (c *stubCatalogAPI) ListRestaurants(_ context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, error) {
	c.calls++
	return c.listFn(filter)
}

// ---------------------------------------------------------------------------
// Stores, credentials, notices, observations
// ---------------------------------------------------------------------------

type memStore struct {
	mu      sync.Mutex
	token   string
	saveErr error
	deletes int
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *memStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.deletes++
	return nil
}

func (s *memStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type staticCreds struct {
	token string
}

func (c staticCreds) Credential() (string, bool) {
	return c.token, c.token != ""
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(notice domain.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

type stubRecorder struct {
	mu   sync.Mutex
	seen []domain.StatusObservation
	err  error
}

func (r *stubRecorder) Record(_ context.Context, obs domain.StatusObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, obs)
	return r.err
}

func (r *stubRecorder) Statuses() []domain.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OrderStatus, 0, len(r.seen))
	for _, o := range r.seen {
		out = append(out, o.Status)
	}
	return out
}

type stubObservationRepo struct {
	inserted  []domain.StatusObservation
	insertErr error

	// failNext makes only the next n inserts fail with transientErr.
	failNext     int
	transientErr error
}

func (r *stubObservationRepo) Insert(_ context.Context, obs domain.StatusObservation) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if r.failNext > 0 {
		r.failNext--
		return r.transientErr
	}
	r.inserted = append(r.inserted, obs)
	return nil
}

func (r *stubObservationRepo) ListByOrder(_ context.Context, orderID int) ([]domain.StatusObservation, error) {
	var out []domain.StatusObservation
	for _, o := range r.inserted {
		if o.OrderID == orderID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubDedup struct {
	claimed  map[string]bool
	err      error
	released int
}

func (d *stubDedup) Claim(_ context.Context, orderID int, status domain.OrderStatus, _ time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.claimed == nil {
		d.claimed = make(map[string]bool)
	}
	key := fmt.Sprintf("%d:%s", orderID, status)
	if d.claimed[key] {
		return false, nil
	}
	d.claimed[key] = true
	return true, nil
}

func (d *stubDedup) Release(_ context.Context, orderID int, status domain.OrderStatus) error {
	delete(d.claimed, fmt.Sprintf("%d:%s", orderID, status))
	d.released++
	return nil
}
