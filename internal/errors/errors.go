package errors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the auth gateway
var (
	// Configuration errors
	ErrConfiguration = errors.New("configuration error")

	// Upstream errors (auth server, execution API)
	ErrUpstream            = errors.New("upstream request failed")
	ErrTokenExchangeFailed = errors.New("token exchange failed")
	ErrNoAccessToken       = errors.New("no access token in token response")
	ErrRevocationFailed    = errors.New("global logout failed")

	// Validation errors
	ErrValidation         = errors.New("validation failed")
	ErrStateMismatch      = errors.New("oauth state mismatch")
	ErrInvalidCallback    = errors.New("missing code or state")
	ErrAuthorizationError = errors.New("authorization server returned an error")
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidIssuer      = errors.New("invalid issuer")
	ErrInvalidAudience    = errors.New("invalid audience")
	ErrInvalidSignature   = errors.New("invalid token signature")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ConfigurationError reports a required environment variable that is absent
// while running in production.
type ConfigurationError struct {
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment variable: %s", e.Variable)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
