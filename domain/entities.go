package domain

import "time"

// User represents a patient account in the durable store
type User struct {
	ID                  uint
	Email               string
	Phone               string
	PasswordHash        string `gorm:"column:password"`
	EmailVerified       bool
	OnboardingCompleted bool
	Preferences         map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User        *User
	AccessToken string
	SessionID   string
	ExpiresIn   int64
}

// Session represents one device's server-side session record
type Session struct {
	ID                  string         `json:"id"`
	UserID              uint           `json:"user_id"`
	EmailVerified       bool           `json:"email_verified"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	Preferences         map[string]any `json:"preferences,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	ExpiresAt           time.Time      `json:"expires_at"`
}

// SessionPatch carries the durable-state fields that must be reflected
// into every live session for a user. Nil fields are left untouched.
type SessionPatch struct {
	EmailVerified       *bool
	OnboardingCompleted *bool
	Preferences         map[string]any
}

// Apply merges the patch into a session record, preserving unrelated fields.
func (p *SessionPatch) Apply(s *Session) {
	if p.EmailVerified != nil {
		s.EmailVerified = *p.EmailVerified
	}
	if p.OnboardingCompleted != nil {
		s.OnboardingCompleted = *p.OnboardingCompleted
	}
	if p.Preferences != nil {
		if s.Preferences == nil {
			s.Preferences = make(map[string]any, len(p.Preferences))
		}
		for k, v := range p.Preferences {
			s.Preferences[k] = v
		}
	}
}

// QuotaDecision is the outcome of consuming one point from a quota bucket
type QuotaDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// IssuedCode is the result of creating a verification challenge.
// The raw code exists only here, for out-of-band delivery; the store
// keeps a keyed hash.
type IssuedCode struct {
	Code          string
	ExpirySeconds int
}

// VerificationStatus enumerates every valid verify-code outcome
type VerificationStatus string

const (
	VerificationOK           VerificationStatus = "ok"
	VerificationExpired      VerificationStatus = "expired"
	VerificationLocked       VerificationStatus = "locked"
	VerificationFailed       VerificationStatus = "failed"
	VerificationFailedLocked VerificationStatus = "failed_locked"
)

// VerificationOutcome represents the result of a verify-code attempt
type VerificationOutcome struct {
	Status     VerificationStatus
	Attempts   int
	RetryAfter time.Duration
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
