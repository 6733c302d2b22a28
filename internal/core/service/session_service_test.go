package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, userID int, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newSessionSvc(api *stubAuthAPI, store *memStore) (*SessionService, *clock.Mock) {
	mock := clock.NewMock()
	mock.Set(testNow)
	return NewSessionService(api, store, mock, zerolog.Nop()), mock
}

func alice() *domain.User {
	return &domain.User{ID: 7, Email: "alice@example.com", FirstName: "Alice", UserType: domain.UserTypeCustomer}
}

func TestSessionService_Login_Rejected(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(string, string) (*ports.AuthResult, error) {
			return nil, &domain.APIError{Status: 401, Message: "Invalid credentials"}
		},
	}
	store := &memStore{}
	svc, _ := newSessionSvc(api, store)

	user, err := svc.Login(context.Background(), "a@b.com", "bad")

	require.Error(t, err)
	assert.Nil(t, user)
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr), "expected *AuthError, got %T", err)
	assert.Equal(t, domain.AuthRejected, authErr.Kind)
	assert.Equal(t, "Invalid credentials", authErr.Err.Error())
	assert.False(t, svc.IsAuthenticated())
	assert.Empty(t, store.Token())
}

func TestSessionService_Login_Success(t *testing.T) {
	token := signedToken(t, 7, testNow.Add(time.Hour))
	api := &stubAuthAPI{
		loginFn: func(email, _ string) (*ports.AuthResult, error) {
			assert.Equal(t, "alice@example.com", email)
			return &ports.AuthResult{User: alice(), Token: token}, nil
		},
	}
	store := &memStore{}
	svc, _ := newSessionSvc(api, store)

	var seen []domain.Session
	svc.OnChange(func(_ context.Context, s domain.Session) { seen = append(seen, s) })

	user, err := svc.Login(context.Background(), "  alice@example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)

	assert.Equal(t, token, store.Token())
	cur := svc.Current()
	assert.True(t, cur.Authenticated())
	assert.Equal(t, testNow.Add(time.Hour).Unix(), cur.ExpiresAt.Unix())

	cred, ok := svc.Credential()
	assert.True(t, ok)
	assert.Equal(t, token, cred)

	require.Len(t, seen, 1)
	assert.True(t, seen[0].Authenticated())
}

func TestSessionService_Login_MissingFields(t *testing.T) {
	api := &stubAuthAPI{}
	svc, _ := newSessionSvc(api, &memStore{})

	_, err := svc.Login(context.Background(), " ", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	assert.Empty(t, api.Calls())
}

func TestSessionService_Login_NetworkErrorIsNotAuthError(t *testing.T) {
	netErr := &domain.NetworkError{Op: "login", Err: errors.New("connection refused")}
	api := &stubAuthAPI{
		loginFn: func(string, string) (*ports.AuthResult, error) { return nil, netErr },
	}
	svc, _ := newSessionSvc(api, &memStore{})

	_, err := svc.Login(context.Background(), "a@b.com", "pw")

	var authErr *domain.AuthError
	assert.False(t, errors.As(err, &authErr))
	var ne *domain.NetworkError
	assert.ErrorAs(t, err, &ne)
}

func TestSessionService_Logout_ClearsEvenWhenServerFails(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(string, string) (*ports.AuthResult, error) {
			return &ports.AuthResult{User: alice(), Token: "opaque-token"}, nil
		},
		logoutErr: &domain.NetworkError{Op: "logout", Err: errors.New("timeout")},
	}
	store := &memStore{}
	svc, _ := newSessionSvc(api, store)

	_, err := svc.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	var last domain.Session
	svc.OnChange(func(_ context.Context, s domain.Session) { last = s })

	svc.Logout(context.Background())

	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.Current().User)
	assert.Empty(t, store.Token())
	assert.False(t, last.Authenticated())
	assert.Contains(t, api.Calls(), "logout")
}

func TestSessionService_Logout_Anonymous_NoServerCall(t *testing.T) {
	api := &stubAuthAPI{}
	store := &memStore{}
	svc, _ := newSessionSvc(api, store)

	svc.Logout(context.Background())

	assert.Empty(t, api.Calls())
	assert.Equal(t, 1, store.deletes)
}

func TestSessionService_Restore(t *testing.T) {
	t.Run("nothing stored stays anonymous", func(t *testing.T) {
		api := &stubAuthAPI{}
		svc, _ := newSessionSvc(api, &memStore{})

		sess := svc.Restore(context.Background())

		assert.False(t, sess.Authenticated())
		assert.Empty(t, api.Calls())
	})

	t.Run("valid credential resolves identity", func(t *testing.T) {
		token := signedToken(t, 7, testNow.Add(time.Hour))
		api := &stubAuthAPI{
			verifyFn: func(got string) (*domain.User, error) {
				assert.Equal(t, token, got)
				return alice(), nil
			},
		}
		store := &memStore{token: token}
		svc, _ := newSessionSvc(api, store)

		sess := svc.Restore(context.Background())

		require.True(t, sess.Authenticated())
		assert.Equal(t, "alice@example.com", sess.User.Email)
		assert.Equal(t, token, store.Token())
	})

	t.Run("rejected credential is discarded", func(t *testing.T) {
		api := &stubAuthAPI{}
		store := &memStore{token: "opaque-token"}
		svc, _ := newSessionSvc(api, store)

		sess := svc.Restore(context.Background())

		assert.False(t, sess.Authenticated())
		assert.Empty(t, store.Token())
		assert.Equal(t, []string{"verify"}, api.Calls())
	})

	t.Run("expired credential is discarded without a call", func(t *testing.T) {
		api := &stubAuthAPI{}
		store := &memStore{token: signedToken(t, 7, testNow.Add(-time.Minute))}
		svc, _ := newSessionSvc(api, store)

		sess := svc.Restore(context.Background())

		assert.False(t, sess.Authenticated())
		assert.Empty(t, store.Token())
		assert.Empty(t, api.Calls())
	})
}

func TestSessionService_Register(t *testing.T) {
	valid := domain.Registration{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Liddell",
	}

	t.Run("client-side validation makes no call", func(t *testing.T) {
		api := &stubAuthAPI{}
		svc, _ := newSessionSvc(api, &memStore{})

		bad := valid
		bad.Email = "not-an-email"
		bad.Password = "123"
		_, err := svc.Register(context.Background(), bad)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")
		assert.Contains(t, verr.Fields, "password")
		assert.Empty(t, api.Calls())
	})

	t.Run("conflict is an invalid auth error", func(t *testing.T) {
		api := &stubAuthAPI{
			registerFn: func(domain.Registration) (*ports.AuthResult, error) {
				return nil, &domain.APIError{Status: 409, Message: "User already exists"}
			},
		}
		svc, _ := newSessionSvc(api, &memStore{})

		_, err := svc.Register(context.Background(), valid)

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.AuthInvalid, authErr.Kind)
		assert.False(t, svc.IsAuthenticated())
	})

	t.Run("success signs in as customer", func(t *testing.T) {
		api := &stubAuthAPI{
			registerFn: func(reg domain.Registration) (*ports.AuthResult, error) {
				assert.Equal(t, domain.UserTypeCustomer, reg.UserType)
				return &ports.AuthResult{User: alice(), Token: "opaque-token"}, nil
			},
		}
		store := &memStore{}
		svc, _ := newSessionSvc(api, store)

		user, err := svc.Register(context.Background(), valid)

		require.NoError(t, err)
		assert.Equal(t, 7, user.ID)
		assert.True(t, svc.IsAuthenticated())
		assert.Equal(t, "opaque-token", store.Token())
	})
}

func TestSessionService_AnonymousAccountOps(t *testing.T) {
	api := &stubAuthAPI{}
	svc, _ := newSessionSvc(api, &memStore{})
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: "Al"})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	assert.ErrorIs(t, svc.ChangePassword(ctx, "old", "newpass"), domain.ErrAuthRequired)
	assert.ErrorIs(t, svc.RefreshCredential(ctx), domain.ErrAuthRequired)
	assert.Empty(t, api.Calls())
}

func loggedIn(t *testing.T, api *stubAuthAPI, store *memStore, token string) *SessionService {
	t.Helper()
	api.loginFn = func(string, string) (*ports.AuthResult, error) {
		return &ports.AuthResult{User: alice(), Token: token}, nil
	}
	svc, _ := newSessionSvc(api, store)
	_, err := svc.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	return svc
}

func TestSessionService_UpdateProfile(t *testing.T) {
	api := &stubAuthAPI{
		profileFn: func(u domain.ProfileUpdate) (*domain.User, error) {
			user := alice()
			user.FirstName = u.FirstName
			user.Phone = u.Phone
			return user, nil
		},
	}
	svc := loggedIn(t, api, &memStore{}, "opaque-token")

	user, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: "Ally", Phone: "+1 (555) 010-0000"})

	require.NoError(t, err)
	assert.Equal(t, "Ally", user.FirstName)
	assert.Equal(t, "Ally", svc.Current().User.FirstName)
}

func TestSessionService_UpdateProfile_InvalidPhone(t *testing.T) {
	api := &stubAuthAPI{}
	svc := loggedIn(t, api, &memStore{}, "opaque-token")

	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Phone: "call me"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
	assert.NotContains(t, api.Calls(), "profile")
}

func TestSessionService_ChangePassword(t *testing.T) {
	api := &stubAuthAPI{
		passwordFn: func(current, _ string) error {
			if current != "pw" {
				return &domain.APIError{Status: 400, Message: "Current password is incorrect"}
			}
			return nil
		},
	}
	svc := loggedIn(t, api, &memStore{}, "opaque-token")
	before := svc.Current()

	err := svc.ChangePassword(context.Background(), "wrong", "newpass1")
	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthInvalid, authErr.Kind)

	require.NoError(t, svc.ChangePassword(context.Background(), "pw", "newpass1"))
	assert.Equal(t, before, svc.Current())

	var verr *domain.ValidationError
	assert.ErrorAs(t, svc.ChangePassword(context.Background(), "pw", "short"), &verr)
}

func TestSessionService_RefreshCredential(t *testing.T) {
	t.Run("swaps and persists the new token", func(t *testing.T) {
		fresh := signedToken(t, 7, testNow.Add(2*time.Hour))
		api := &stubAuthAPI{
			refreshFn: func(old string) (string, error) {
				assert.Equal(t, "opaque-token", old)
				return fresh, nil
			},
		}
		store := &memStore{}
		svc := loggedIn(t, api, store, "opaque-token")

		require.NoError(t, svc.RefreshCredential(context.Background()))

		cred, _ := svc.Credential()
		assert.Equal(t, fresh, cred)
		assert.Equal(t, fresh, store.Token())
		assert.Equal(t, testNow.Add(2*time.Hour).Unix(), svc.Current().ExpiresAt.Unix())
	})

	t.Run("failure keeps the old session", func(t *testing.T) {
		api := &stubAuthAPI{
			refreshFn: func(string) (string, error) {
				return "", &domain.APIError{Status: 401, Message: "Token expired"}
			},
		}
		store := &memStore{}
		svc := loggedIn(t, api, store, "opaque-token")

		err := svc.RefreshCredential(context.Background())

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		cred, ok := svc.Credential()
		assert.True(t, ok)
		assert.Equal(t, "opaque-token", cred)
		assert.Equal(t, "opaque-token", store.Token())
	})
}
