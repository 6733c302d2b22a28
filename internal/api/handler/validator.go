package handler

import (
	"github.com/superdelivery/storefront/internal/pkg/validate"
)

// echoValidator lets Echo call c.Validate(req). Failures are returned as
// *domain.ValidationError so the error handler can render the fields.
type echoValidator struct {
	v *validate.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validate.New()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
