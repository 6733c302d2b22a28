package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

type CartHandler struct {
	cart ports.CartService
}

func NewCartHandler(cart ports.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addItemRequest struct {
	MenuItemID     int     `json:"menu_item_id"   validate:"required,gt=0"`
	RestaurantID   int     `json:"restaurant_id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"          validate:"gte=0"`
	Quantity       int     `json:"quantity"       validate:"required,gte=1"`
	Customizations string  `json:"customizations"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// cartResponse is the cart plus everything the UI needs to render checkout.
type cartResponse struct {
	Cart         domain.Cart   `json:"cart"`
	Totals       domain.Totals `json:"totals"`
	MinimumOrder float64       `json:"minimum_order"`
	Shortfall    float64       `json:"shortfall"`
	CanCheckout  bool          `json:"can_checkout"`
}

func toCartResponse(cart domain.Cart) cartResponse {
	return cartResponse{
		Cart:         cart,
		Totals:       cart.Totals(),
		MinimumOrder: cart.MinimumOrder(),
		Shortfall:    cart.MinimumShortfall(),
		CanCheckout:  !cart.IsEmpty() && cart.CheckMinimum() == nil,
	}
}

// Get returns the cached cart. Passing ?refresh=true fetches it first.
//
// @Summary      Current cart
// @Tags         cart
// @Produce      json
// @Param        refresh  query     bool  false  "Fetch from the server first"
// @Success      200      {object}  cartResponse
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		h.cart.FetchCart(c.Request().Context())
	}
	return c.JSON(http.StatusOK, toCartResponse(h.cart.Cart()))
}

// Count returns the server's item count, 0 for anonymous sessions.
func (h *CartHandler) Count(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": h.cart.Count(c.Request().Context())})
}

// Conflict reports whether adding from the restaurant would mix restaurants.
func (h *CartHandler) Conflict(c echo.Context) error {
	id, err := pathID(c, "restaurant_id")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"different_restaurant": h.cart.IsDifferentRestaurant(id)})
}

// AddItem adds a menu item to the cart.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Item to add"
// @Success      200   {object}  cartResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item := domain.MenuItem{ID: req.MenuItemID, RestaurantID: req.RestaurantID, Name: req.Name, Price: req.Price}
	if err := h.cart.AddItem(c.Request().Context(), item, req.Quantity, req.Customizations); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(h.cart.Cart()))
}

// UpdateItem sets a cart line's quantity.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.cart.UpdateItemQuantity(c.Request().Context(), id, req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(h.cart.Cart()))
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.cart.RemoveItem(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(h.cart.Cart()))
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.cart.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(h.cart.Cart()))
}
