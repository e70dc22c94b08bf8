package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kwarecom/hrmkit/internal/domain"
	"github.com/kwarecom/hrmkit/internal/metrics"
	"github.com/kwarecom/hrmkit/internal/repository"
	"github.com/kwarecom/hrmkit/internal/usecase"
)

const (
	// SessionCookie carries the opaque session ID.
	SessionCookie = "hrmkit_session"
	// RedirectCookie stashes the originally requested path across the
	// login round trip so it can be resumed after verification.
	RedirectCookie = "hrmkit_redirect"

	// The stash must outlive the email round trip, so it shares the
	// magic link's validity window.
	redirectCookieMaxAge = int(usecase.LinkTTL / time.Second)

	errUnauthorized = "Unauthorized"
)

// sessionDecoder is the subset of usecase.Sessions the gateway needs.
type sessionDecoder interface {
	Decode(token string) (domain.SessionClaims, error)
}

// GatewayConfig wires the auth gateway.
type GatewayConfig struct {
	Sessions sessionDecoder
	Store    repository.SessionRepository
	// LoginRoute is where unauthenticated browsers are sent.
	LoginRoute string
	// PublicPaths bypass the gateway on exact match (login page, the
	// /auth endpoints themselves).
	PublicPaths []string
	// PublicPrefixes bypass the gateway on path-prefix match.
	PublicPrefixes []string
	Logger         *slog.Logger
}

// Gateway is the request-level auth decision point. Requests on the
// allow-list pass through. Bearer-token requests are decoded directly and
// answered with 401 on failure. Everything else needs an authenticated
// session record whose token still decodes; a dead token clears the
// session and bounces the caller to login.
func Gateway(cfg GatewayConfig) gin.HandlerFunc {
	logger := cfg.Logger.With("component", "auth_gateway")

	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path, cfg) {
			c.Next()
			return
		}

		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			handleBearer(c, cfg, strings.TrimPrefix(header, "Bearer "))
			return
		}

		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			redirectToLogin(c, cfg)
			return
		}

		rec, err := cfg.Store.Get(c.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				logger.ErrorContext(c.Request.Context(), "session store get", "error", err)
			}
			redirectToLogin(c, cfg)
			return
		}
		if !rec.Authenticated {
			redirectToLogin(c, cfg)
			return
		}

		claims, err := cfg.Sessions.Decode(rec.Token)
		if err != nil {
			// Normal session aging: clear silently and start over.
			metrics.SessionDecodesTotal.WithLabelValues(decodeOutcome(err)).Inc()
			if clearErr := cfg.Store.Clear(c.Request.Context(), sid); clearErr != nil {
				logger.ErrorContext(c.Request.Context(), "session store clear", "error", clearErr)
			}
			c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			redirectToLogin(c, cfg)
			return
		}

		metrics.SessionDecodesTotal.WithLabelValues("valid").Inc()
		c.Set("email", claims.Email)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func handleBearer(c *gin.Context, cfg GatewayConfig, raw string) {
	claims, err := cfg.Sessions.Decode(raw)
	if err != nil {
		metrics.SessionDecodesTotal.WithLabelValues(decodeOutcome(err)).Inc()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	metrics.SessionDecodesTotal.WithLabelValues("valid").Inc()
	c.Set("email", claims.Email)
	c.Set("username", claims.Username)
	c.Next()
}

func isPublic(path string, cfg GatewayConfig) bool {
	for _, p := range cfg.PublicPaths {
		if path == p {
			return true
		}
	}
	for _, p := range cfg.PublicPrefixes {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return true
		}
	}
	return false
}

func redirectToLogin(c *gin.Context, cfg GatewayConfig) {
	original := c.Request.URL.RequestURI()

	c.SetCookie(RedirectCookie, original, redirectCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, cfg.LoginRoute+"?redirect_to="+url.QueryEscape(original))
	c.Abort()
}

func decodeOutcome(err error) string {
	if errors.Is(err, domain.ErrExpiredToken) {
		return "expired"
	}
	return "invalid"
}
