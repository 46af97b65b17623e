// Package common defines the sentinel errors shared across tokenkeeper
// layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors. ErrInvalidToken covers malformed, unsigned and
	// absent tokens alike so that a caller cannot tell forgery apart from
	// corruption.
	ErrInvalidToken        = errors.New("invalid token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrDeviceNotRegistered = errors.New("no device registered with token")

	// ErrEntropyUnavailable means the CSPRNG failed. There is no fallback to
	// a weaker source; the request fails.
	ErrEntropyUnavailable = errors.New("entropy source unavailable")

	// Account surface errors.
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrWrongPassword       = errors.New("wrong password")
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountDoesNotExist = errors.New("account does not exist")
	ErrAccountInactive     = errors.New("account is not activated")
	ErrSocialAccount       = errors.New("account is linked to a social login")
)

// ForceReLogin reports whether err is one of the terminal authentication
// failures after which the client must fully re-authenticate, as opposed to a
// generic failure it may recover from with the tokens it already holds.
func ForceReLogin(err error) bool {
	return errors.Is(err, ErrRefreshTokenExpired) || errors.Is(err, ErrDeviceNotRegistered)
}
