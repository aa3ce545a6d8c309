package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected  = errors.New("device not connected")
	ErrUnsupported   = errors.New("operation not supported by device")
	ErrNoAddress     = errors.New("device has no network address")
	ErrInvalidValue  = errors.New("invalid value")
	ErrUnknownDevice = errors.New("unknown device")
)

// Cloud discovery failures.
var (
	ErrTwoFactorRequired  = errors.New("two-factor authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrNetwork            = errors.New("network error")
)

// AuthError wraps one of the cloud discovery sentinels with its cause.
type AuthError struct {
	Kind  error
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *AuthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func NewAuthError(kind, cause error) *AuthError {
	return &AuthError{Kind: kind, Cause: cause}
}

// IsAuthError reports whether err is a cloud discovery failure the caller can skip past.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
