package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

type RestaurantHandler struct {
	catalog ports.CatalogService
}

func NewRestaurantHandler(catalog ports.CatalogService) *RestaurantHandler {
	return &RestaurantHandler{catalog: catalog}
}

type restaurantsResponse struct {
	Restaurants []domain.Restaurant `json:"restaurants"`
	// Degraded is set when the list came from cache or sample data.
	Degraded bool `json:"degraded"`
}

// List returns restaurants, optionally filtered by search text and cuisine.
// A search on its own goes through the catalog's search, which ignores
// queries shorter than the minimum length.
//
// @Summary      List restaurants
// @Tags         restaurants
// @Produce      json
// @Param        search        query     string  false  "Search text"
// @Param        cuisine_type  query     string  false  "Cuisine type"
// @Success      200           {object}  restaurantsResponse
// @Router       /v1/restaurants [get]
func (h *RestaurantHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	filter := domain.RestaurantFilter{
		Search:      c.QueryParam("search"),
		CuisineType: c.QueryParam("cuisine_type"),
	}

	var (
		list     []domain.Restaurant
		degraded bool
	)
	if filter.Search != "" && filter.CuisineType == "" {
		list, degraded = h.catalog.Search(ctx, filter.Search)
	} else {
		list, degraded = h.catalog.ListRestaurants(ctx, filter)
	}

	return c.JSON(http.StatusOK, restaurantsResponse{Restaurants: list, Degraded: degraded})
}
