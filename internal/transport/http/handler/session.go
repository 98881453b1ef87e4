package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/token"
)

// SessionCookie writes and clears the HTTP-only session cookie. Secure
// is on outside local dev; SameSite=Lax so the cookie survives the
// top-level navigation back from an OAuth provider.
type SessionCookie struct {
	MaxAge time.Duration
	Secure bool
}

func (s SessionCookie) Set(c *gin.Context, signed string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, signed, int(s.MaxAge.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName, "", -1, "/", "", s.Secure, true)
}
