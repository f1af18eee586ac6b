package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mycyberclinics/verifysvc/domain"
)

// AuthHandlers handles signup, login, and email-verification HTTP requests
type AuthHandlers struct {
	accountSvc domain.AccountService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(accountSvc domain.AccountService) *AuthHandlers {
	return &AuthHandlers{accountSvc: accountSvc}
}

// SignupRequest represents signup request. The phone number is optional;
// when present, verification codes are delivered by SMS instead of email.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResendRequest represents a verification-code resend request
type ResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ConfirmRequest represents an email confirmation request
type ConfirmRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// writeQuotaDenied renders a quota denial with its mandatory retry hint
func writeQuotaDenied(c *gin.Context, qerr *domain.QuotaError) {
	retry := int(qerr.RetryAfter.Seconds())
	c.Header("Retry-After", strconv.Itoa(retry))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":               "Too many requests",
		"retry_after_seconds": retry,
	})
}

// Signup handles account creation
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.accountSvc.Signup(c.Request.Context(), req.Email, req.Password, req.Phone, c.ClientIP())
	if err != nil {
		var qerr *domain.QuotaError
		switch {
		case errors.As(err, &qerr):
			writeQuotaDenied(c, qerr)
		case errors.Is(err, domain.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message":      "Account created. A verification code was sent to your email.",
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
			"user": gin.H{
				"id":             result.User.ID,
				"email":          result.User.Email,
				"email_verified": result.User.EmailVerified,
			},
		},
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
			"user": gin.H{
				"id":                   result.User.ID,
				"email":                result.User.Email,
				"email_verified":       result.User.EmailVerified,
				"onboarding_completed": result.User.OnboardingCompleted,
			},
		},
	})
}

// SendCode handles verification-code resend
func (h *AuthHandlers) SendCode(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.accountSvc.ResendCode(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		var qerr *domain.QuotaError
		switch {
		case errors.As(err, &qerr):
			writeQuotaDenied(c, qerr)
		case errors.Is(err, domain.ErrUserNotFound):
			// Same response as success so the endpoint cannot be used to
			// probe which emails have accounts.
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the account exists, a code was sent."}})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the account exists, a code was sent."}})
}

// ConfirmCode handles email confirmation, mapping each verification
// outcome onto its HTTP status: ok 200, expired 410, locked 423,
// failed 401, failed_locked 423.
func (h *AuthHandlers) ConfirmCode(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.accountSvc.ConfirmEmail(c.Request.Context(), req.Email, req.Code, c.ClientIP())
	if err != nil {
		var qerr *domain.QuotaError
		if errors.As(err, &qerr) {
			writeQuotaDenied(c, qerr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification is temporarily unavailable"})
		return
	}

	switch outcome.Status {
	case domain.VerificationOK:
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Email verified"}})
	case domain.VerificationExpired:
		c.JSON(http.StatusGone, gin.H{"error": "Verification code expired"})
	case domain.VerificationLocked:
		c.JSON(http.StatusLocked, gin.H{
			"error":               "Too many failed attempts",
			"retry_after_seconds": int(outcome.RetryAfter.Seconds()),
		})
	case domain.VerificationFailed:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Incorrect verification code",
			"attempts": outcome.Attempts,
		})
	case domain.VerificationFailedLocked:
		c.JSON(http.StatusLocked, gin.H{
			"error":               "Too many failed attempts",
			"attempts":            outcome.Attempts,
			"retry_after_seconds": int(outcome.RetryAfter.Seconds()),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
	}
}

// Logout handles session teardown
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}

	if err := h.accountSvc.Logout(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out"}})
}

// Me returns the caller's session view
func (h *AuthHandlers) Me(c *gin.Context) {
	value, ok := c.Get("session")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}
	session := value.(*domain.Session)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"user_id":              session.UserID,
			"email_verified":       session.EmailVerified,
			"onboarding_completed": session.OnboardingCompleted,
			"preferences":          session.Preferences,
		},
	})
}
