package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaError_MatchesSentinel(t *testing.T) {
	var err error = &QuotaError{Scope: "signup-ip", RetryAfter: 90 * time.Second}

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

func TestQuotaError_AsRecoversDetails(t *testing.T) {
	wrapped := fmt.Errorf("signup rejected: %w", &QuotaError{Scope: "signup-ip", RetryAfter: 2 * time.Minute})

	var qerr *QuotaError
	require.True(t, errors.As(wrapped, &qerr))
	assert.Equal(t, "signup-ip", qerr.Scope)
	assert.Equal(t, 2*time.Minute, qerr.RetryAfter)
	assert.ErrorIs(t, wrapped, ErrQuotaExceeded)
}

func TestQuotaError_Message(t *testing.T) {
	err := &QuotaError{Scope: "resend-email", RetryAfter: 30 * time.Second}
	assert.Contains(t, err.Error(), "resend-email")
	assert.Contains(t, err.Error(), "30s")
}

func TestStoreUnavailable_WrapPreservesIdentity(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}
