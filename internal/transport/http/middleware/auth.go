package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/repository"
	"github.com/zazaborisovi/laptomania/internal/token"
)

const (
	errUnauthorized = "You are not logged in"
	errForbidden    = "You are not allowed to perform this action"

	// UserKey is where SessionAuth stores the resolved *domain.User.
	UserKey = "user"
)

// SessionAuth reads the session cookie, verifies the token and resolves
// the user. A token whose user no longer exists counts as not logged in.
func SessionAuth(issuer *token.Issuer, users repository.UserRepository, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(token.CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		userID, err := issuer.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "session auth user lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireRoles runs after SessionAuth and rejects users whose role is
// not in the allow-list.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}
		if !domain.RoleAllowed(user.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by SessionAuth, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
