package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/superdelivery/storefront/internal/core/domain"
)

const defaultDedupTTL = 24 * time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: observed:<order_id>:<status>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// Claim atomically marks (orderID, status) as seen. It reports true only for
// the first caller within ttl.
func (d *DedupChecker) Claim(ctx context.Context, orderID int, status domain.OrderStatus, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	ok, err := d.client.SetNX(ctx, d.key(orderID, status), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

// Release deletes the claim for (orderID, status).
func (d *DedupChecker) Release(ctx context.Context, orderID int, status domain.OrderStatus) error {
	if err := d.client.Del(ctx, d.key(orderID, status)).Err(); err != nil {
		return fmt.Errorf("dedup release: %w", err)
	}
	return nil
}

func (d *DedupChecker) key(orderID int, status domain.OrderStatus) string {
	return fmt.Sprintf("observed:%d:%s", orderID, status)
}
