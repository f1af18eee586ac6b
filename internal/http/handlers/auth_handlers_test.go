package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycyberclinics/verifysvc/domain"
	"github.com/mycyberclinics/verifysvc/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSON(t *testing.T, handler gin.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestSignup_Created(t *testing.T) {
	svc := mocks.NewMockAccountService()
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestSignup_PhonePassedThrough(t *testing.T) {
	var gotPhone string
	svc := mocks.NewMockAccountService()
	svc.SignupFunc = func(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error) {
		gotPhone = phone
		return &domain.AuthResult{
			User:        &domain.User{ID: 1, Email: email, Phone: phone},
			AccessToken: "token:1:sess",
			SessionID:   "sess",
			ExpiresIn:   3600,
		}, nil
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "password123",
		"phone":    "+15551234567",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "+15551234567", gotPhone)
}

func TestSignup_InvalidPhoneFormat(t *testing.T) {
	h := NewAuthHandlers(mocks.NewMockAccountService())

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "password123",
		"phone":    "not-a-number",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_InvalidBody(t *testing.T) {
	h := NewAuthHandlers(mocks.NewMockAccountService())

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "not-an-email",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.SignupFunc = func(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error) {
		return nil, domain.ErrUserAlreadyExists
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignup_QuotaDenied(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.SignupFunc = func(ctx context.Context, email, password, phone, ip string) (*domain.AuthResult, error) {
		return nil, &domain.QuotaError{Scope: "signup-ip", RetryAfter: 90 * time.Second}
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.Signup, http.MethodPost, "/auth/signup", gin.H{
		"email":    "user@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "retry_after_seconds")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
		return nil, domain.ErrInvalidCredentials
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.Login, http.MethodPost, "/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "wrongpass",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_OK(t *testing.T) {
	h := NewAuthHandlers(mocks.NewMockAccountService())

	w := performJSON(t, h.Login, http.MethodPost, "/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestSendCode_UnknownEmailLooksLikeSuccess(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.ResendCodeFunc = func(ctx context.Context, email, ip string) error {
		return domain.ErrUserNotFound
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.SendCode, http.MethodPost, "/auth/verify/send", gin.H{
		"email": "nobody@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "If the account exists")
}

func TestSendCode_QuotaDenied(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.ResendCodeFunc = func(ctx context.Context, email, ip string) error {
		return &domain.QuotaError{Scope: "resend-email", RetryAfter: 30 * time.Second}
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.SendCode, http.MethodPost, "/auth/verify/send", gin.H{
		"email": "user@example.com",
	})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestConfirmCode_OutcomeStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *domain.VerificationOutcome
		expected int
	}{
		{
			name:     "ok",
			outcome:  &domain.VerificationOutcome{Status: domain.VerificationOK},
			expected: http.StatusOK,
		},
		{
			name:     "expired",
			outcome:  &domain.VerificationOutcome{Status: domain.VerificationExpired},
			expected: http.StatusGone,
		},
		{
			name:     "locked",
			outcome:  &domain.VerificationOutcome{Status: domain.VerificationLocked, RetryAfter: 15 * time.Minute},
			expected: http.StatusLocked,
		},
		{
			name:     "failed",
			outcome:  &domain.VerificationOutcome{Status: domain.VerificationFailed, Attempts: 2},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "failed and locked",
			outcome:  &domain.VerificationOutcome{Status: domain.VerificationFailedLocked, Attempts: 5, RetryAfter: 15 * time.Minute},
			expected: http.StatusLocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			svc.ConfirmEmailFunc = func(ctx context.Context, email, code, ip string) (*domain.VerificationOutcome, error) {
				return tt.outcome, nil
			}
			h := NewAuthHandlers(svc)

			w := performJSON(t, h.ConfirmCode, http.MethodPost, "/auth/verify/confirm", gin.H{
				"email": "user@example.com",
				"code":  "123456",
			})

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestConfirmCode_StoreOutageIsServerError(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.ConfirmEmailFunc = func(ctx context.Context, email, code, ip string) (*domain.VerificationOutcome, error) {
		return nil, errors.New("shared store unavailable")
	}
	h := NewAuthHandlers(svc)

	w := performJSON(t, h.ConfirmCode, http.MethodPost, "/auth/verify/confirm", gin.H{
		"email": "user@example.com",
		"code":  "123456",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "expired")
	assert.NotContains(t, w.Body.String(), "Incorrect")
}

func TestLogout_NoSession(t *testing.T) {
	h := NewAuthHandlers(mocks.NewMockAccountService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_OK(t *testing.T) {
	var loggedOut string
	svc := mocks.NewMockAccountService()
	svc.LogoutFunc = func(ctx context.Context, sessionID string) error {
		loggedOut = sessionID
		return nil
	}
	h := NewAuthHandlers(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	c.Set("session_id", "sess-1")
	h.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sess-1", loggedOut)
}

func TestMe_ReturnsSessionView(t *testing.T) {
	h := NewAuthHandlers(mocks.NewMockAccountService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set("session", &domain.Session{
		ID:            "sess-1",
		UserID:        7,
		EmailVerified: true,
		Preferences:   map[string]any{"theme": "dark"},
	})
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			UserID        uint           `json:"user_id"`
			EmailVerified bool           `json:"email_verified"`
			Preferences   map[string]any `json:"preferences"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, uint(7), body.Data.UserID)
	assert.True(t, body.Data.EmailVerified)
	assert.Equal(t, "dark", body.Data.Preferences["theme"])
}
