package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycyberclinics/verifysvc/domain"
)

// AccountHandlers handles onboarding and preference HTTP requests
type AccountHandlers struct {
	accountSvc domain.AccountService
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(accountSvc domain.AccountService) *AccountHandlers {
	return &AccountHandlers{accountSvc: accountSvc}
}

// PreferencesRequest represents a preference update
type PreferencesRequest struct {
	Preferences map[string]any `json:"preferences" binding:"required"`
}

func currentUserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// UpdatePreferences persists preferences and fans them out to every
// live session for the user. The fan-out is fire-and-forget; only the
// durable write can fail this request.
func (h *AccountHandlers) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accountSvc.UpdatePreferences(c.Request.Context(), userID, req.Preferences); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Preferences updated"}})
}

// CompleteOnboarding marks onboarding done and syncs live sessions
func (h *AccountHandlers) CompleteOnboarding(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.accountSvc.CompleteOnboarding(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete onboarding"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Onboarding completed"}})
}
