package domain

import (
	"context"
	"time"
)

// SharedStore wraps the remote keyed store every engine component runs on.
// Every method either succeeds or returns an error wrapping
// ErrStoreUnavailable; absent keys are reported as ErrKeyNotFound, never
// as stale data.
type SharedStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	AddToSet(ctx context.Context, setKey, member string) error
	RemoveFromSet(ctx context.Context, setKey, member string) error
	MembersOf(ctx context.Context, setKey string) ([]string, error)
	RunAtomic(ctx context.Context, script string, keys []string, args ...any) (any, error)
	Del(ctx context.Context, keys ...string) error
}

// RateLimiter consumes one point from a quota bucket
type RateLimiter interface {
	Consume(ctx context.Context, scope, key string) (*QuotaDecision, error)
}

// VerificationService defines one-time-code operations
type VerificationService interface {
	CreateCode(ctx context.Context, subjectID, purpose string) (*IssuedCode, error)
	VerifyCode(ctx context.Context, subjectID, purpose, candidate string) (*VerificationOutcome, error)
	Revoke(ctx context.Context, subjectID, purpose string) error
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	IDsByUser(ctx context.Context, userID uint) ([]string, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionSyncService pushes durable-state changes into live sessions
type SessionSyncService interface {
	Propagate(ctx context.Context, userID uint, patch *SessionPatch)
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	MarkEmailVerified(ctx context.Context, userID uint) error
	CompleteOnboarding(ctx context.Context, userID uint) error
	UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error
}

// AccountService defines the signup/verification business logic
type AccountService interface {
	Signup(ctx context.Context, email, password, phone, ip string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	ResendCode(ctx context.Context, email, ip string) error
	ConfirmEmail(ctx context.Context, email, code, ip string) (*VerificationOutcome, error)
	CompleteOnboarding(ctx context.Context, userID uint) error
	UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID uint, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// NotificationService defines out-of-band code delivery
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}
