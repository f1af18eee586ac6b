package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateAccessTokenFunc func(userID uint, sessionID string) (string, error)
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// GenerateAccessToken returns a parseable fake token unless overridden
func (m *MockTokenService) GenerateAccessToken(userID uint, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, sessionID)
	}
	return fmt.Sprintf("token:%d:%s", userID, sessionID), nil
}

// ValidateAccessToken parses the fake token format unless overridden
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	var userID uint
	if _, err := fmt.Sscan(parts[1], &userID); err != nil {
		return nil, domain.ErrTokenMalformed
	}
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    userID,
		SessionID: parts[2],
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(15 * time.Minute).Unix(),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
