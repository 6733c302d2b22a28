package service

import (
	"context"
	"errors"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superdelivery/storefront/internal/core/domain"
)

func TestCatalogService_ListRestaurants(t *testing.T) {
	live := []domain.Restaurant{{ID: 9, Name: "Live Sushi", CuisineType: "Japanese"}}
	var fail bool
	api := &stubCatalogAPI{
		listFn: func(domain.RestaurantFilter) ([]domain.Restaurant, error) {
			if fail {
				return nil, &domain.NetworkError{Op: "list restaurants", Err: errors.New("offline")}
			}
			return live, nil
		},
	}
	notifier := &recordingNotifier{}
	svc := NewCatalogService(api, notifier, clock.NewMock(), zerolog.Nop())
	ctx := context.Background()

	got, degraded := svc.ListRestaurants(ctx, domain.RestaurantFilter{})
	require.False(t, degraded)
	assert.Equal(t, live, got)

	fail = true

	t.Run("falls back to cached listing", func(t *testing.T) {
		got, degraded := svc.ListRestaurants(ctx, domain.RestaurantFilter{})
		assert.True(t, degraded)
		assert.Equal(t, live, got)
		assert.Equal(t, 1, notifier.Count())
	})

	t.Run("falls back to filtered sample data", func(t *testing.T) {
		got, degraded := svc.ListRestaurants(ctx, domain.RestaurantFilter{CuisineType: "italian"})
		assert.True(t, degraded)
		require.Len(t, got, 1)
		assert.Equal(t, "Mario's Pizzeria", got[0].Name)
	})
}

func TestCatalogService_Search(t *testing.T) {
	api := &stubCatalogAPI{
		listFn: func(f domain.RestaurantFilter) ([]domain.Restaurant, error) {
			assert.Equal(t, "pizza", f.Search)
			return []domain.Restaurant{{ID: 1, Name: "Mario's Pizzeria"}}, nil
		},
	}
	svc := NewCatalogService(api, &recordingNotifier{}, nil, zerolog.Nop())

	got, _ := svc.Search(context.Background(), " p ")
	assert.Empty(t, got)
	assert.Equal(t, 0, api.calls)

	got, degraded := svc.Search(context.Background(), "  pizza ")
	assert.False(t, degraded)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, api.calls)
}
