package usecase

import "errors"

// Business errors the delivery layer maps to HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTooManySessions    = errors.New("maximum number of active sessions reached")
	ErrUserExists         = errors.New("username, email or phone already registered")
	ErrUnauthorized       = errors.New("invalid or expired token")
)

// Reason codes returned by token validation. Callers treat anything but
// ReasonValid as an authentication failure.
const (
	ReasonValid         = "valid"
	ReasonInvalidFormat = "invalid_format"
	ReasonInvalid       = "invalid"
	ReasonExpired       = "expired"
	ReasonWrongType     = "wrong_type"
	ReasonNotFound      = "not_found"
)
