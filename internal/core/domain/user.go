package domain

import "time"

const (
	UserTypeCustomer        = "customer"
	UserTypeRestaurantOwner = "restaurant_owner"
	UserTypeDriver          = "driver"
	UserTypeAdmin           = "admin"
)

// User is the customer identity returned by the auth endpoints.
type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	UserType       string `json:"user_type,omitempty"`
	DefaultAddress string `json:"default_address,omitempty"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username  string `json:"username"             validate:"required,min=3"`
	Email     string `json:"email"                validate:"required,email"`
	Password  string `json:"password"             validate:"required,min=6"`
	FirstName string `json:"first_name"           validate:"required"`
	LastName  string `json:"last_name"            validate:"required"`
	Phone     string `json:"phone,omitempty"      validate:"omitempty,phone"`
	UserType  string `json:"user_type,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are left
// unchanged by the server.
type ProfileUpdate struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Phone          string `json:"phone,omitempty"           validate:"omitempty,phone"`
	DefaultAddress string `json:"default_address,omitempty"`
}

// Session is the client's record of who is signed in.
// The zero value is the anonymous session.
type Session struct {
	User      *User     `json:"user"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Authenticated reports whether the session carries both identity and credential.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}
