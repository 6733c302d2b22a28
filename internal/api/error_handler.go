package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "...", "fields": {...}}.
// Unexpected errors are logged and reported as a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var (
		he      *echo.HTTPError
		valErr  *domain.ValidationError
		minErr  *domain.MinimumOrderError
		authErr *domain.AuthError
		apiErr  *domain.APIError
		netErr  *domain.NetworkError
	)

	switch {
	case errors.As(err, &he):
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}

	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: valErr.Fields}

	case errors.As(err, &minErr):
		return http.StatusUnprocessableEntity, errorResponse{
			Error:  minErr.Error(),
			Fields: map[string]string{"subtotal": minErr.Error()},
		}

	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, errorResponse{Error: "please sign in to continue"}

	case errors.As(err, &authErr):
		code := http.StatusUnauthorized
		if authErr.Kind == domain.AuthInvalid {
			code = http.StatusBadRequest
		}
		return code, errorResponse{Error: authMessage(authErr)}

	case errors.As(err, &apiErr):
		if apiErr.Status < 400 {
			// 2xx with "success": false is a rejection of the request.
			return http.StatusUnprocessableEntity, errorResponse{Error: apiErr.Message}
		}
		if apiErr.Status < 500 {
			return apiErr.Status, errorResponse{Error: apiErr.Message}
		}
		log.Warn().Err(err).Int("upstream_status", apiErr.Status).Str("path", c.Path()).Msg("upstream error")
		return http.StatusBadGateway, errorResponse{Error: apiErr.Message}

	case errors.As(err, &netErr):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unreachable")
		return http.StatusBadGateway, errorResponse{Error: "the delivery service is unreachable, please try again"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// authMessage prefers the server's wording over the wrapped operation name.
func authMessage(err *domain.AuthError) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err.Err != nil {
		return err.Err.Error()
	}
	return "authentication failed"
}
