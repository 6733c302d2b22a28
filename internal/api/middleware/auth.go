package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// UserKey is the echo context key RequireSession stores the signed-in user under.
const UserKey = "user"

// SessionReader is the part of the session manager the middleware needs.
type SessionReader interface {
	Current() domain.Session
}

// RequireSession rejects requests while the session is anonymous and
// injects the signed-in user into context.
func RequireSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessions.Current()
			if !sess.Authenticated() {
				return domain.ErrAuthRequired
			}

			c.Set(UserKey, sess.User)
			return next(c)
		}
	}
}
