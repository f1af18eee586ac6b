package mocks

import (
	"context"

	"github.com/mycyberclinics/verifysvc/domain"
)

// MockRateLimiter implements domain.RateLimiter for testing
type MockRateLimiter struct {
	ConsumeFunc func(ctx context.Context, scope, key string) (*domain.QuotaDecision, error)
}

// NewMockRateLimiter creates a new MockRateLimiter with default behaviors
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

// Consume consumes one point from the bucket
func (m *MockRateLimiter) Consume(ctx context.Context, scope, key string) (*domain.QuotaDecision, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, scope, key)
	}
	// Default behavior: always allow
	return &domain.QuotaDecision{Allowed: true, Remaining: 1}, nil
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*MockRateLimiter)(nil)
