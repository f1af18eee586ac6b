package mocks

import (
	"context"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockVerificationService implements domain.VerificationService for testing
type MockVerificationService struct {
	CreateCodeFunc func(ctx context.Context, subjectID, purpose string) (*domain.IssuedCode, error)
	VerifyCodeFunc func(ctx context.Context, subjectID, purpose, candidate string) (*domain.VerificationOutcome, error)
	RevokeFunc     func(ctx context.Context, subjectID, purpose string) error
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// CreateCode issues a new verification challenge
func (m *MockVerificationService) CreateCode(ctx context.Context, subjectID, purpose string) (*domain.IssuedCode, error) {
	if m.CreateCodeFunc != nil {
		return m.CreateCodeFunc(ctx, subjectID, purpose)
	}
	// Default behavior: fixed code for testing
	return &domain.IssuedCode{Code: "123456", ExpirySeconds: 600}, nil
}

// VerifyCode verifies a candidate code
func (m *MockVerificationService) VerifyCode(ctx context.Context, subjectID, purpose, candidate string) (*domain.VerificationOutcome, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, subjectID, purpose, candidate)
	}
	// Default behavior: accept "123456" as valid
	if candidate == "123456" {
		return &domain.VerificationOutcome{Status: domain.VerificationOK}, nil
	}
	return &domain.VerificationOutcome{Status: domain.VerificationFailed, Attempts: 1}, nil
}

// Revoke deletes a challenge
func (m *MockVerificationService) Revoke(ctx context.Context, subjectID, purpose string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, subjectID, purpose)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
