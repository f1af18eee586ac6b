package mocks

import (
	"context"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockAccountService implements domain.AccountService for testing
type MockAccountService struct {
	SignupFunc             func(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error)
	LoginFunc              func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	LogoutFunc             func(ctx context.Context, sessionID string) error
	ResendCodeFunc         func(ctx context.Context, email, ip string) error
	ConfirmEmailFunc       func(ctx context.Context, email, code, ip string) (*domain.VerificationOutcome, error)
	CompleteOnboardingFunc func(ctx context.Context, userID uint) error
	UpdatePreferencesFunc  func(ctx context.Context, userID uint, prefs map[string]any) error
}

// NewMockAccountService creates a new MockAccountService with default behaviors
func NewMockAccountService() *MockAccountService {
	return &MockAccountService{}
}

func (m *MockAccountService) Signup(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password, phone, ip)
	}
	return &domain.AuthResult{
		User:        &domain.User{ID: 1, Email: email},
		AccessToken: "token:1:sess",
		SessionID:   "sess",
		ExpiresIn:   3600,
	}, nil
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &domain.AuthResult{
		User:        &domain.User{ID: 1, Email: email},
		AccessToken: "token:1:sess",
		SessionID:   "sess",
		ExpiresIn:   3600,
	}, nil
}

func (m *MockAccountService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockAccountService) ResendCode(ctx context.Context, email, ip string) error {
	if m.ResendCodeFunc != nil {
		return m.ResendCodeFunc(ctx, email, ip)
	}
	return nil
}

func (m *MockAccountService) ConfirmEmail(ctx context.Context, email, code, ip string) (*domain.VerificationOutcome, error) {
	if m.ConfirmEmailFunc != nil {
		return m.ConfirmEmailFunc(ctx, email, code, ip)
	}
	return &domain.VerificationOutcome{Status: domain.VerificationOK}, nil
}

func (m *MockAccountService) CompleteOnboarding(ctx context.Context, userID uint) error {
	if m.CompleteOnboardingFunc != nil {
		return m.CompleteOnboardingFunc(ctx, userID)
	}
	return nil
}

func (m *MockAccountService) UpdatePreferences(ctx context.Context, userID uint, prefs map[string]any) error {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, userID, prefs)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountService = (*MockAccountService)(nil)
