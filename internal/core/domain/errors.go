package domain

import "errors"

// Validation failures: user-correctable, mapped to 4xx by the API layer.
var (
	ErrEmailTaken      = errors.New("email address is already registered")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrCodeNotFound    = errors.New("invalid access code")
	ErrCodeAlreadyUsed = errors.New("access code has already been used")
	ErrCodeExpired     = errors.New("access code has expired")
)

// Auth failures. ErrInvalidCredentials deliberately covers both unknown
// identifier and wrong password so callers cannot enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// ErrUserNotFound is internal to store adapters; the login flow collapses it
// into ErrInvalidCredentials before it crosses the service boundary.
var ErrUserNotFound = errors.New("user not found")

// Configuration faults: deployment defects, never shown to end users.
var (
	ErrRoleNotConfigured = errors.New("default role is not configured")
	ErrWeakSigningSecret = errors.New("signing secret missing or too short")
)

// ErrStoreUnavailable wraps infrastructure failures from the credential store.
var ErrStoreUnavailable = errors.New("credential store unavailable")
