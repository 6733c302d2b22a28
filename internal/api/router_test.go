package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/superdelivery/storefront/internal/core/domain"
)

type anonymousSessions struct{}

func (anonymousSessions) Credential() (string, bool) { return "", false }
func (anonymousSessions) Current() domain.Session { return domain.Session{} }
func (anonymousSessions) IsAuthenticated() bool { return false }
func (anonymousSessions) Logout(context.Context) {}
func (anonymousSessions) RefreshCredential(context.Context) error {
	return domain.ErrAuthRequired
}
func (anonymousSessions) Login(context.Context, string, string) (*domain.User, error)  {
	return nil, domain.ErrAuthRequired
}
func (anonymousSessions) Register(context.Context, domain.Registration) (*domain.User, error)  {
	return nil, domain.ErrAuthRequired
}
func (anonymousSessions) UpdateProfile(context.Context, domain.ProfileUpdate) (*domain.User, error)  {
	return nil, domain.ErrAuthRequired
}
func (anonymousSessions) ChangePassword(context.Context, string, string) error {
	return domain.ErrAuthRequired
}

func TestRouter_Routes(t *testing.T) {
	e := NewRouter(Deps{Sessions: anonymousSessions{}, Log: zerolog.Nop()})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/v1/session", http.StatusOK},
		{http.MethodPost, "/v1/session/refresh", http.StatusUnauthorized},
		{http.MethodGet, "/v1/orders/42/track", http.StatusUnauthorized},
		{http.MethodGet, "/v1/orders/active/track", http.StatusUnauthorized},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
