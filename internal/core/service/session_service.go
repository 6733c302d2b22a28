package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/pkg/metrics"
	"github.com/superdelivery/storefront/internal/pkg/validate"
)

// SessionListener is called after the session switches between anonymous and
// authenticated. It runs outside the session lock.
type SessionListener func(ctx context.Context, s domain.Session)

// SessionService owns the customer's identity and bearer credential.
type SessionService struct {
	api       ports.AuthAPI
	store     ports.TokenStore
	validator *validate.Validator
	clock     clock.Clock
	log       zerolog.Logger

	mu        sync.RWMutex
	session   domain.Session
	listeners []SessionListener
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns an anonymous session manager.
func NewSessionService(api ports.AuthAPI, store ports.TokenStore, clk clock.Clock, log zerolog.Logger) *SessionService {
	if clk == nil {
		clk = clock.New()
	}
	return &SessionService{
		api:       api,
		store:     store,
		validator: validate.New(),
		clock:     clk,
		log:       log.With().Str("component", "session").Logger(),
	}
}

// OnChange registers fn to run on every anonymous/authenticated transition.
func (s *SessionService) OnChange(fn SessionListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Current returns a copy of the session.
func (s *SessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// IsAuthenticated reports whether a customer is signed in.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// Credential returns the bearer token while authenticated.
func (s *SessionService) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Authenticated() {
		return "", false
	}
	return s.session.Token, true
}

// Restore resumes a previous session from the token store, if any.
func (s *SessionService) Restore(ctx context.Context) domain.Session {
	token, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load stored credential")
		return s.Current()
	}
	if token == "" {
		return s.Current()
	}

	sess := s.VerifyCredential(ctx, token)
	if sess.Authenticated() {
		metrics.SessionTransitionsTotal.WithLabelValues("restore").Inc()
	}
	return sess
}

// VerifyCredential resolves token into an identity. Any failure discards
// the credential and leaves the session anonymous; it never returns an error.
func (s *SessionService) VerifyCredential(ctx context.Context, token string) domain.Session {
	if token == "" {
		s.discard(ctx)
		return s.Current()
	}

	exp, hasExp := tokenExpiry(token)
	if hasExp && !exp.After(s.clock.Now()) {
		s.log.Info().Time("expired_at", exp).Msg("stored credential expired, discarding")
		s.discard(ctx)
		return s.Current()
	}

	user, err := s.api.VerifyToken(ctx, token)
	if err != nil {
		s.log.Info().Err(err).Msg("credential verification failed, discarding")
		s.discard(ctx)
		return s.Current()
	}

	s.establish(ctx, "verify", user, token)
	return s.Current()
}

// Login authenticates with email and password.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		verr := &domain.ValidationError{Fields: map[string]string{}}
		if email == "" {
			verr.Fields["email"] = "email is required"
		}
		if password == "" {
			verr.Fields["password"] = "password is required"
		}
		return nil, verr
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, authError("login", err)
	}
	if res == nil || res.User == nil || res.Token == "" {
		return nil, &domain.AuthError{Op: "login", Kind: domain.AuthRejected, Err: errors.New("response carried no credential")}
	}

	s.establish(ctx, "login", res.User, res.Token)
	return cloneUser(res.User), nil
}

// Register creates an account and signs it in.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	if reg.UserType == "" {
		reg.UserType = domain.UserTypeCustomer
	}
	if err := s.validator.Struct(reg); err != nil {
		return nil, err
	}

	res, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, authError("register", err)
	}
	if res == nil || res.User == nil || res.Token == "" {
		return nil, &domain.AuthError{Op: "register", Kind: domain.AuthRejected, Err: errors.New("response carried no credential")}
	}

	s.establish(ctx, "register", res.User, res.Token)
	return cloneUser(res.User), nil
}

// Logout ends the session. The server call is best effort; local state is
// always cleared.
func (s *SessionService) Logout(ctx context.Context) {
	token, ok := s.Credential()
	if ok {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("logout request failed")
		}
	}

	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete stored credential")
	}

	metrics.SessionTransitionsTotal.WithLabelValues("logout").Inc()
	s.log.Info().Msg("signed out")
	s.notify(ctx)
}

// RefreshCredential swaps the bearer token for a fresh one. On failure the
// current session is left untouched.
func (s *SessionService) RefreshCredential(ctx context.Context) error {
	token, ok := s.Credential()
	if !ok {
		return domain.ErrAuthRequired
	}

	fresh, err := s.api.RefreshToken(ctx, token)
	if err != nil {
		return authError("refresh", err)
	}
	if fresh == "" {
		return &domain.AuthError{Op: "refresh", Kind: domain.AuthRejected, Err: errors.New("response carried no credential")}
	}

	if err := s.store.Save(ctx, fresh); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist refreshed credential")
	}

	s.mu.Lock()
	// A logout or new login may have happened while the call was in flight.
	if s.session.Token == token {
		s.session.Token = fresh
		s.session.ExpiresAt = expiryOrZero(fresh)
	}
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues("refresh").Inc()
	return nil
}

// UpdateProfile edits the signed-in customer's profile.
func (s *SessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	token, ok := s.Credential()
	if !ok {
		return nil, domain.ErrAuthRequired
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, err
	}

	user, err := s.api.UpdateProfile(ctx, token, update)
	if err != nil {
		return nil, authError("update profile", err)
	}

	s.mu.Lock()
	if s.session.Token == token && user != nil {
		s.session.User = cloneUser(user)
	}
	s.mu.Unlock()

	return cloneUser(user), nil
}

// ChangePassword changes the customer's password. No local state changes.
func (s *SessionService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	token, ok := s.Credential()
	if !ok {
		return domain.ErrAuthRequired
	}

	verr := &domain.ValidationError{Fields: map[string]string{}}
	if currentPassword == "" {
		verr.Fields["current_password"] = "current password is required"
	}
	if len(newPassword) < 6 {
		verr.Fields["new_password"] = "new password must be at least 6 characters"
	}
	if len(verr.Fields) > 0 {
		return verr
	}

	if err := s.api.ChangePassword(ctx, token, currentPassword, newPassword); err != nil {
		return authError("change password", err)
	}
	return nil
}

// establish persists the credential, then sets the identity.
func (s *SessionService) establish(ctx context.Context, event string, user *domain.User, token string) {
	if err := s.store.Save(ctx, token); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist credential")
	}

	s.mu.Lock()
	s.session = domain.Session{
		User:      cloneUser(user),
		Token:     token,
		ExpiresAt: expiryOrZero(token),
	}
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(event).Inc()
	s.log.Info().Int("user_id", user.ID).Str("event", event).Msg("signed in")
	s.notify(ctx)
}

// discard drops any credential and returns to anonymous.
func (s *SessionService) discard(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.session.Authenticated()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete stored credential")
	}

	metrics.SessionTransitionsTotal.WithLabelValues("discard").Inc()
	if wasAuthenticated {
		s.notify(ctx)
	}
}

func (s *SessionService) notify(ctx context.Context) {
	s.mu.RLock()
	listeners := make([]SessionListener, len(s.listeners))
	copy(listeners, s.listeners)
	current := copySession(s.session)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, current)
	}
}

// authError classifies a failed account call. Non-API failures keep their
// own type so callers can tell a network outage from a rejection.
func authError(op string, err error) error {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	kind := domain.AuthRejected
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		kind = domain.AuthInvalid
	}
	return &domain.AuthError{Op: op, Kind: kind, Err: err}
}

// tokenExpiry reads the exp claim without verifying the signature. Opaque
// tokens report false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func expiryOrZero(token string) time.Time {
	exp, _ := tokenExpiry(token)
	return exp
}

func copySession(s domain.Session) domain.Session {
	s.User = cloneUser(s.User)
	return s
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
