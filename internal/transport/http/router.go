package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kwarecom/hrmkit/config"
	"github.com/kwarecom/hrmkit/internal/repository"
	"github.com/kwarecom/hrmkit/internal/transport/http/handler"
	"github.com/kwarecom/hrmkit/internal/transport/http/middleware"
	"github.com/kwarecom/hrmkit/internal/usecase"

	sloggin "github.com/samber/slog-gin"
)

// NewRouter wires the auth endpoints and places the gateway in front of
// every other route, registered or not: unauthenticated callers are bounced
// to login before routing even resolves.
func NewRouter(cfg *config.Config, logger *slog.Logger, authHandler *handler.AuthHandler, sessions *usecase.Sessions, store repository.SessionRepository) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	publicPaths := []string{
		cfg.LoginRoute,
		"/auth",
		"/auth/magic-link",
		"/auth/logout",
	}
	if cfg.Env == "local" {
		publicPaths = append(publicPaths, "/auth/dev-login")
	}

	r.Use(middleware.Gateway(middleware.GatewayConfig{
		Sessions:       sessions,
		Store:          store,
		LoginRoute:     cfg.LoginRoute,
		PublicPaths:    publicPaths,
		PublicPrefixes: cfg.PublicRoutes,
		Logger:         logger,
	}))

	// Public auth endpoints (allow-listed above).
	r.POST("/auth/magic-link", authHandler.RequestMagicLink)
	r.GET("/auth", authHandler.Verify)
	r.GET("/auth/logout", authHandler.Logout)
	r.POST("/auth/logout", authHandler.Logout)
	if cfg.Env == "local" {
		r.POST("/auth/dev-login", authHandler.DevLogin)
	}

	// Protected: everything that is not allow-listed.
	r.GET("/auth/me", authHandler.Me)

	return r
}
