package domain

import (
	"errors"
	"fmt"
	"time"
)

// Shared store errors
var (
	ErrStoreUnavailable = errors.New("shared store unavailable")
	ErrKeyNotFound      = errors.New("key not found")
)

// Rate limiting errors
var (
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrUnknownScope  = errors.New("unknown quota scope")
)

// Verification errors
var (
	ErrChallengeExpired  = errors.New("verification code expired")
	ErrChallengeLocked   = errors.New("verification locked")
	ErrChallengeMismatch = errors.New("verification code mismatch")
)

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// QuotaError is a quota denial carrying its retry hint. It matches
// ErrQuotaExceeded under errors.Is.
type QuotaError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded for scope %s, retry after %s", e.Scope, e.RetryAfter)
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
