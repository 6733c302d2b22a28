package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/superdelivery/storefront/internal/core/ports"
)

const keyPrefix = "storefront:"

// TokenStore keeps the bearer credential under storefront:auth_token.
type TokenStore struct {
	client *redis.Client
}

var _ ports.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, keyPrefix+ports.TokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return v, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, keyPrefix+ports.TokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, keyPrefix+ports.TokenKey).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
