package middleware

import (
	"context"
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

func performAuthed(t *testing.T, mw gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	mw(c)
	return w, c
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	sessionRepo := mocks.NewMockSessionRepository()
	require.NoError(t, sessionRepo.Create(context.Background(), &domain.Session{
		ID:        "sess-1",
		UserID:    42,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	mw := NewAuthMW(tokenSvc, sessionRepo).WithJWT()
	w, c := performAuthed(t, mw, "Bearer token:42:sess-1")

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), c.MustGet("user_id"))
	assert.Equal(t, "sess-1", c.MustGet("session_id"))
	session := c.MustGet("session").(*domain.Session)
	assert.Equal(t, uint(42), session.UserID)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	mw := NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository()).WithJWT()

	w, c := performAuthed(t, mw, "")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadHeaderFormat(t *testing.T) {
	mw := NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository()).WithJWT()

	w, c := performAuthed(t, mw, "Basic dXNlcjpwYXNz")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenExpired
	}
	mw := NewAuthMW(tokenSvc, mocks.NewMockSessionRepository()).WithJWT()

	w, c := performAuthed(t, mw, "Bearer token:42:sess-1")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	mw := NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository()).WithJWT()

	w, c := performAuthed(t, mw, "Bearer garbage")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_DeadSessionRejectsLiveToken(t *testing.T) {
	// Token parses fine but no session record backs it
	mw := NewAuthMW(mocks.NewMockTokenService(), mocks.NewMockSessionRepository()).WithJWT()

	w, c := performAuthed(t, mw, "Bearer token:42:sess-gone")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_SessionUserMismatch(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	require.NoError(t, sessionRepo.Create(context.Background(), &domain.Session{
		ID:        "sess-1",
		UserID:    7,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	mw := NewAuthMW(mocks.NewMockTokenService(), sessionRepo).WithJWT()
	w, c := performAuthed(t, mw, "Bearer token:42:sess-1")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
