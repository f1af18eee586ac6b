package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycyberclinics/verifysvc/internal/mocks"
)

func performAuthedJSON(t *testing.T, handler gin.HandlerFunc, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/account", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	handler(c)
	return w
}

func TestUpdatePreferences_OK(t *testing.T) {
	var gotUserID uint
	var gotPrefs map[string]any
	svc := mocks.NewMockAccountService()
	svc.UpdatePreferencesFunc = func(ctx context.Context, userID uint, prefs map[string]any) error {
		gotUserID = userID
		gotPrefs = prefs
		return nil
	}
	h := NewAccountHandlers(svc)

	w := performAuthedJSON(t, h.UpdatePreferences, 7, gin.H{
		"preferences": gin.H{"notifications": true, "language": "en"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), gotUserID)
	assert.Equal(t, true, gotPrefs["notifications"])
	assert.Equal(t, "en", gotPrefs["language"])
}

func TestUpdatePreferences_MissingBody(t *testing.T) {
	h := NewAccountHandlers(mocks.NewMockAccountService())

	w := performAuthedJSON(t, h.UpdatePreferences, 7, gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePreferences_NotAuthenticated(t *testing.T) {
	h := NewAccountHandlers(mocks.NewMockAccountService())

	payload, err := json.Marshal(gin.H{"preferences": gin.H{"a": 1}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/account/preferences", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	h.UpdatePreferences(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompleteOnboarding_OK(t *testing.T) {
	var gotUserID uint
	svc := mocks.NewMockAccountService()
	svc.CompleteOnboardingFunc = func(ctx context.Context, userID uint) error {
		gotUserID = userID
		return nil
	}
	h := NewAccountHandlers(svc)

	w := performAuthedJSON(t, h.CompleteOnboarding, 3, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(3), gotUserID)
}
