package ports

import (
	"context"
	"time"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// TokenKey is the well-known key the bearer credential is persisted under.
const TokenKey = "auth_token"

// TokenStore persists the bearer credential across restarts.
// Load returns "" with a nil error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// ObservationRepository persists observed order status changes.
type ObservationRepository interface {
	Insert(ctx context.Context, obs domain.StatusObservation) error
	ListByOrder(ctx context.Context, orderID int) ([]domain.StatusObservation, error)
}

// DedupChecker remembers which observations were already recorded.
type DedupChecker interface {
	// Claim reports true when the key was not seen before and is now marked.
	Claim(ctx context.Context, orderID int, status domain.OrderStatus, ttl time.Duration) (bool, error)
	// Release forgets a claim so the observation can be recorded again.
	Release(ctx context.Context, orderID int, status domain.OrderStatus) error
}
