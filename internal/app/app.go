package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycyberclinics/verifysvc/internal/config"
	httpx "github.com/mycyberclinics/verifysvc/internal/http"
	"github.com/mycyberclinics/verifysvc/internal/http/handlers"
	"github.com/mycyberclinics/verifysvc/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}

	// The ping exercises the DNS failover path before traffic arrives
	if err := c.Store.Ping(context.Background()); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(c.AccountSvc)
	accountH := handlers.NewAccountHandlers(c.AccountSvc)
	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)

	r := httpx.BuildRouter(authH, accountH, jwtMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
