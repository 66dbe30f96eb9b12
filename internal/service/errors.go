package service

import (
	"errors"
	"regexp"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrNoReferenceFile  = errors.New("no file found for this order")

	// ErrProviderUnavailable distinguishes provider/configuration outages
	// (503) from application bugs (500).
	ErrProviderUnavailable = errors.New("payment service temporarily unavailable")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrRateLimited        = errors.New("too many requests")
	ErrAlreadySubscribed  = errors.New("email already subscribed")
)

// ValidationError carries a user-facing message that handlers return with a
// 400 status.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
