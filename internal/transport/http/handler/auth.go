package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kwarecom/hrmkit/internal/domain"
	"github.com/kwarecom/hrmkit/internal/metrics"
	"github.com/kwarecom/hrmkit/internal/repository"
	"github.com/kwarecom/hrmkit/internal/transport/http/middleware"
	"github.com/kwarecom/hrmkit/internal/usecase"
)

// magicLinker is the subset of usecase.MagicLinks the handler needs.
// Defined here (point of use) so tests can inject a fake.
type magicLinker interface {
	Issue(ctx context.Context, identity, baseURL string) (string, error)
	Verify(identity, issuedAt, signature string, now time.Time) (domain.VerifiedIdentity, error)
}

// sessionService is the subset of usecase.Sessions the handler needs.
type sessionService interface {
	Create(v domain.VerifiedIdentity) (string, error)
}

type AuthHandler struct {
	links          magicLinker
	sessions       sessionService
	store          repository.SessionRepository
	loginRoute     string
	dashboardRoute string
	logger         *slog.Logger
	now            func() time.Time
}

func NewAuthHandler(links magicLinker, sessions sessionService, store repository.SessionRepository, loginRoute, dashboardRoute string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		links:          links,
		sessions:       sessions,
		store:          store,
		loginRoute:     loginRoute,
		dashboardRoute: dashboardRoute,
		logger:         logger.With("component", "auth_handler"),
		now:            time.Now,
	}
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
	// BaseURL overrides the verification endpoint origin; the configured
	// default is used when absent.
	BaseURL string `json:"base_url" binding:"omitempty,url"`
}

// POST /auth/magic-link
// Mints a sign-in link for the given address and emails it. A transport
// failure is surfaced to the requester immediately and never retried.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.links.Issue(ctx, req.Email, req.BaseURL); err != nil {
		if errors.Is(err, domain.ErrDeliveryFailed) {
			metrics.MagicLinkDeliveryFailuresTotal.Inc()
			h.logger.ErrorContext(ctx, "magic link delivery", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": errDeliveryFailed})
			return
		}
		h.logger.ErrorContext(ctx, "magic link issue", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.MagicLinksIssuedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "email has been sent"})
}

// GET /auth?identity=<email>&issuedAt=<unix-seconds>&signature=<hex>
// Verifies an inbound magic link. Success materializes a session and
// redirects to the resumed destination with the link parameters stripped;
// failure bounces to login with a deliberately generic error message.
func (h *AuthHandler) Verify(c *gin.Context) {
	ctx := c.Request.Context()

	identity := c.Query("identity")
	issuedAt := c.Query("issuedAt")
	sig := c.Query("signature")

	v, err := h.links.Verify(identity, issuedAt, sig, h.now())
	if err != nil {
		metrics.MagicLinkVerificationsTotal.WithLabelValues(verifyOutcome(err)).Inc()
		h.logger.InfoContext(ctx, "magic link rejected", "reason", err)
		c.Redirect(http.StatusFound, h.loginRoute+"?error="+url.QueryEscape(errInvalidLink))
		return
	}
	metrics.MagicLinkVerificationsTotal.WithLabelValues("valid").Inc()

	token, err := h.sessions.Create(v)
	if err != nil {
		h.logger.ErrorContext(ctx, "create session token", "error", err)
		c.Redirect(http.StatusFound, h.loginRoute+"?error="+url.QueryEscape(errInternalServer))
		return
	}

	sid := uuid.NewString()
	rec := domain.Session{Token: token, Authenticated: true, UpdatedAt: h.now()}
	if err := h.store.Set(ctx, sid, rec); err != nil {
		h.logger.ErrorContext(ctx, "persist session", "error", err)
		c.Redirect(http.StatusFound, h.loginRoute+"?error="+url.QueryEscape(errInternalServer))
		return
	}
	metrics.SessionsCreatedTotal.Inc()

	c.SetCookie(middleware.SessionCookie, sid, int(usecase.SessionTTL.Seconds()), "/", "", false, true)

	dest := h.resumeDestination(c)
	c.SetCookie(middleware.RedirectCookie, "", -1, "/", "", false, true)

	// The resumed destination may already carry a query string; merge the
	// session parameters into it instead of appending a second "?".
	u, err := url.Parse(dest)
	if err != nil {
		u = &url.URL{Path: h.dashboardRoute}
	}
	q := u.Query()
	q.Set("session_token", token)
	q.Set("username", usecase.DisplayName(v.Email))
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, u.String())
}

// GET|POST /auth/logout
// Clears the stored session unconditionally.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookie); err == nil && sid != "" {
		if err := h.store.Clear(c.Request.Context(), sid); err != nil {
			h.logger.ErrorContext(c.Request.Context(), "clear session", "error", err)
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, h.loginRoute)
}

// GET /auth/me
// Runs behind the gateway; reports the identity of the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email":    c.GetString("email"),
		"username": c.GetString("username"),
	})
}

type devLoginRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// POST /auth/dev-login
// Development bypass: mints a session without a magic link. Mounted only
// when ENV=local.
func (h *AuthHandler) DevLogin(c *gin.Context) {
	var req devLoginRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Email == "" {
		req.Email = "dev@hrmkit.com"
	}

	v := domain.VerifiedIdentity{Email: req.Email, IssuedAt: h.now().Unix()}
	token, err := h.sessions.Create(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	sid := uuid.NewString()
	rec := domain.Session{Token: token, Authenticated: true, UpdatedAt: h.now()}
	if err := h.store.Set(c.Request.Context(), sid, rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.SetCookie(middleware.SessionCookie, sid, int(usecase.SessionTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"token": token, "username": usecase.DisplayName(req.Email)})
}

// resumeDestination picks where to land after login: explicit redirect_to
// on the link, then the stashed redirect cookie, then the dashboard.
// Only same-site paths are honored.
func (h *AuthHandler) resumeDestination(c *gin.Context) string {
	if dest := c.Query("redirect_to"); validDestination(dest) {
		return dest
	}
	if dest, err := c.Cookie(middleware.RedirectCookie); err == nil && validDestination(dest) {
		return dest
	}
	return h.dashboardRoute
}

func validDestination(dest string) bool {
	return strings.HasPrefix(dest, "/") && !strings.HasPrefix(dest, "//")
}

func verifyOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrLinkExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}
