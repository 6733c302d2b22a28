package domain

import "strings"

// MinSearchLength is the shortest trimmed query that reaches the server.
const MinSearchLength = 2

// RestaurantFilter narrows a restaurant listing.
type RestaurantFilter struct {
	Search      string
	CuisineType string
}

// Key identifies the filter for caching purposes.
func (f RestaurantFilter) Key() string {
	return strings.ToLower(strings.TrimSpace(f.Search)) + "|" + strings.ToLower(strings.TrimSpace(f.CuisineType))
}

// SampleRestaurants is shown when the catalog cannot be reached and nothing
// has been cached yet.
func SampleRestaurants() []Restaurant {
	return []Restaurant{
		{ID: 1, Name: "Mario's Pizzeria", CuisineType: "Italian", Rating: 4.6, DeliveryFee: 2.99, MinimumOrder: 15, EstimatedDeliveryTime: 30, IsActive: true},
		{ID: 2, Name: "Golden Dragon", CuisineType: "Chinese", Rating: 4.4, DeliveryFee: 1.99, MinimumOrder: 12, EstimatedDeliveryTime: 35, IsActive: true},
		{ID: 3, Name: "Taco Fiesta", CuisineType: "Mexican", Rating: 4.5, DeliveryFee: 2.49, MinimumOrder: 10, EstimatedDeliveryTime: 25, IsActive: true},
		{ID: 4, Name: "Burger Barn", CuisineType: "American", Rating: 4.2, DeliveryFee: 0.99, MinimumOrder: 10, EstimatedDeliveryTime: 20, IsActive: true},
	}
}

// Matches applies the filter locally, the way the server would.
func (f RestaurantFilter) Matches(r Restaurant) bool {
	if f.CuisineType != "" && !strings.EqualFold(f.CuisineType, r.CuisineType) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.CuisineType), q) ||
			strings.Contains(strings.ToLower(r.Description), q)
	}
	return true
}
