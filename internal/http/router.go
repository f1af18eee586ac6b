package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/mycyberclinics/verifysvc/internal/http/handlers"
	"github.com/mycyberclinics/verifysvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, ach *handlers.AccountHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/signup", ah.Signup)
	auth.POST("/login", ah.Login)
	auth.POST("/verify/send", ah.SendCode)
	auth.POST("/verify/confirm", ah.ConfirmCode)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.POST("/auth/logout", ah.Logout)
	v.PUT("/account/preferences", ach.UpdatePreferences)
	v.POST("/account/onboarding/complete", ach.CompleteOnboarding)

	return r
}
