package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/metrics"
	"github.com/zazaborisovi/laptomania/internal/token"
	"github.com/zazaborisovi/laptomania/internal/usecase"
)

type oauthUsecaser interface {
	AuthCodeURL(name domain.Provider) (string, error)
	Callback(ctx context.Context, name domain.Provider, code string) (*domain.User, error)
}

// OAuthHandler drives the browser-navigated legs of the OAuth flow.
// Callback failures never surface as JSON: the caller is a top-level
// navigation, so errors become a redirect with an opaque flag.
type OAuthHandler struct {
	oauth     oauthUsecaser
	issuer    *token.Issuer
	cookie    SessionCookie
	clientURL string
	logger    *slog.Logger
}

func NewOAuthHandler(oauth oauthUsecaser, issuer *token.Issuer, cookie SessionCookie, clientURL string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		oauth:     oauth,
		issuer:    issuer,
		cookie:    cookie,
		clientURL: clientURL,
		logger:    logger.With("component", "oauth_handler"),
	}
}

// GET /oauth/:provider
func (h *OAuthHandler) Redirect(c *gin.Context) {
	name := domain.Provider(c.Param("provider"))

	url, err := h.oauth.AuthCodeURL(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GET /oauth/:provider/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	name := domain.Provider(c.Param("provider"))
	ctx := c.Request.Context()

	code := c.Query("code")
	if code == "" {
		h.fail(c, name, errors.New("callback without code"))
		return
	}

	user, err := h.oauth.Callback(ctx, name, code)
	if err != nil {
		h.fail(c, name, err)
		return
	}

	signed, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.fail(c, name, err)
		return
	}

	metrics.OAuthCallbacksTotal.WithLabelValues(string(name), "ok").Inc()
	h.cookie.Set(c, signed)
	c.Redirect(http.StatusFound, h.clientURL+"/panel")
}

func (h *OAuthHandler) fail(c *gin.Context, name domain.Provider, err error) {
	metrics.OAuthCallbacksTotal.WithLabelValues(string(name), outcome(err)).Inc()
	h.logger.Error("oauth callback", "provider", name, "error", err)
	c.Redirect(http.StatusFound, h.clientURL+"/login?error=oauth_failed")
}

func outcome(err error) string {
	var mismatch *domain.ProviderMismatchError
	switch {
	case errors.Is(err, domain.ErrPasswordAccountExists):
		return "password_account"
	case errors.As(err, &mismatch):
		return "provider_mismatch"
	case errors.Is(err, domain.ErrUnverifiedExternalEmail):
		return "unverified_email"
	case errors.Is(err, usecase.ErrUnknownProvider):
		return "unknown_provider"
	default:
		return "error"
	}
}
