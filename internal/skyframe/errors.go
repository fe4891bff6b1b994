package skyframe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLoginFailed is returned by fetchers when the authenticate-if-needed step fails.
var ErrLoginFailed = errors.New("Login failed")

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError captures provider-specific validation issues.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

// AuthError is the structured failure returned by a login attempt.
type AuthError struct {
	Provider string
	Message  string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s login failed: %s", e.Provider, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps err as an AuthError, reusing err when it already is one.
func NewAuthError(provider string, err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &AuthError{Provider: provider, Message: msg, Err: err}
}

// LoginFailed converts a failed authenticate-if-needed step into the error surfaced to fetch callers.
// Both errors.Is(err, ErrLoginFailed) and errors.As(err, **AuthError) hold for the result.
func LoginFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrLoginFailed, err)
}
