package service

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

type catalogService struct {
	api      ports.CatalogAPI
	notifier ports.Notifier
	clock    clock.Clock
	log      zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]domain.Restaurant
}

// NewCatalogService returns a CatalogService that falls back to the last
// good listing, then to built-in sample data, when the API is unreachable.
func NewCatalogService(api ports.CatalogAPI, notifier ports.Notifier, clk clock.Clock, log zerolog.Logger) ports.CatalogService {
	if clk == nil {
		clk = clock.New()
	}
	return &catalogService{
		api:      api,
		notifier: notifier,
		clock:    clk,
		log:      log.With().Str("component", "catalog").Logger(),
		cache:    make(map[string][]domain.Restaurant),
	}
}

// ListRestaurants returns the listing for filter. The bool is true when the
// result did not come from the server.
func (s *catalogService) ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) ([]domain.Restaurant, bool) {
	key := filter.Key()

	list, err := s.api.ListRestaurants(ctx, filter)
	if err == nil {
		if list == nil {
			list = []domain.Restaurant{}
		}
		s.mu.Lock()
		s.cache[key] = list
		s.mu.Unlock()
		return cloneRestaurants(list), false
	}

	s.log.Warn().Err(err).Str("filter", key).Msg("failed to list restaurants, using fallback")
	s.notifier.Notify(domain.Notice{
		Level:   domain.NoticeError,
		Title:   "Restaurants unavailable",
		Message: "Showing saved results while we reconnect.",
		At:      s.clock.Now(),
	})

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cloneRestaurants(cached), true
	}

	var sample []domain.Restaurant
	for _, r := range domain.SampleRestaurants() {
		if filter.Matches(r) {
			sample = append(sample, r)
		}
	}
	if sample == nil {
		sample = []domain.Restaurant{}
	}
	return sample, true
}

// Search lists restaurants matching query. Queries shorter than
// domain.MinSearchLength return nothing without calling the API.
func (s *catalogService) Search(ctx context.Context, query string) ([]domain.Restaurant, bool) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < domain.MinSearchLength {
		return []domain.Restaurant{}, false
	}
	return s.ListRestaurants(ctx, domain.RestaurantFilter{Search: q})
}

func cloneRestaurants(in []domain.Restaurant) []domain.Restaurant {
	out := make([]domain.Restaurant, len(in))
	copy(out, in)
	return out
}
