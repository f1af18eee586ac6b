package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestSessionPatch_Apply(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		patch   SessionPatch
		check   func(t *testing.T, s *Session)
	}{
		{
			name:    "sets email verified",
			session: Session{UserID: 1, EmailVerified: false, OnboardingCompleted: true},
			patch:   SessionPatch{EmailVerified: boolPtr(true)},
			check: func(t *testing.T, s *Session) {
				assert.True(t, s.EmailVerified)
				assert.True(t, s.OnboardingCompleted, "unrelated field must survive")
			},
		},
		{
			name:    "nil fields leave session untouched",
			session: Session{UserID: 1, EmailVerified: true, Preferences: map[string]any{"theme": "dark"}},
			patch:   SessionPatch{},
			check: func(t *testing.T, s *Session) {
				assert.True(t, s.EmailVerified)
				assert.Equal(t, "dark", s.Preferences["theme"])
			},
		},
		{
			name:    "explicit false overrides true",
			session: Session{UserID: 1, OnboardingCompleted: true},
			patch:   SessionPatch{OnboardingCompleted: boolPtr(false)},
			check: func(t *testing.T, s *Session) {
				assert.False(t, s.OnboardingCompleted)
			},
		},
		{
			name:    "preferences merge over existing keys",
			session: Session{UserID: 1, Preferences: map[string]any{"theme": "dark", "lang": "en"}},
			patch:   SessionPatch{Preferences: map[string]any{"theme": "light"}},
			check: func(t *testing.T, s *Session) {
				assert.Equal(t, "light", s.Preferences["theme"])
				assert.Equal(t, "en", s.Preferences["lang"])
			},
		},
		{
			name:    "preferences applied to session without any",
			session: Session{UserID: 1},
			patch:   SessionPatch{Preferences: map[string]any{"theme": "dark"}},
			check: func(t *testing.T, s *Session) {
				assert.Equal(t, "dark", s.Preferences["theme"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.session
			tt.patch.Apply(&s)
			tt.check(t, &s)
		})
	}
}

func TestSessionPatch_ApplyDoesNotAliasPatchMap(t *testing.T) {
	patch := SessionPatch{Preferences: map[string]any{"theme": "dark"}}

	s := &Session{UserID: 1}
	patch.Apply(s)
	s.Preferences["theme"] = "light"

	assert.Equal(t, "dark", patch.Preferences["theme"])
}
