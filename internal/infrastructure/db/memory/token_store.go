// Package memory holds process-local store implementations.
package memory

import (
	"context"
	"sync"

	"github.com/superdelivery/storefront/internal/core/ports"
)

// TokenStore keeps the credential in memory; it is lost on restart.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Load(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Delete(context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
