package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthRequired is returned when an operation that needs a signed-in customer
// is attempted on an anonymous session. No network call is made.
var ErrAuthRequired = errors.New("authentication required")

// ErrCartEmpty is returned by checkout when there is nothing to order.
var ErrCartEmpty = errors.New("cart is empty")

// NetworkError means the request never produced a usable response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-success answer from the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// AuthErrorKind separates rejected credentials from rejected input.
type AuthErrorKind string

const (
	AuthRejected AuthErrorKind = "rejected"
	AuthInvalid  AuthErrorKind = "invalid"
)

// AuthError wraps a failed authentication or account operation.
type AuthError struct {
	Op   string
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages from client-side checks.
// It is never produced by a server response.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// MinimumOrderError blocks checkout while the subtotal is below the
// restaurant's minimum order.
type MinimumOrderError struct {
	Minimum   float64
	Subtotal  float64
	Shortfall float64
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order amount is $%.2f, add $%.2f more to proceed", e.Minimum, e.Shortfall)
}
