package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/metrics"
	"github.com/zazaborisovi/laptomania/internal/token"
	"github.com/zazaborisovi/laptomania/internal/transport/http/middleware"
	"github.com/zazaborisovi/laptomania/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Verify(ctx context.Context, code string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

type AuthHandler struct {
	auth   authUsecaser
	issuer *token.Issuer
	cookie SessionCookie
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, issuer *token.Issuer, cookie SessionCookie, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		issuer: issuer,
		cookie: cookie,
		logger: logger.With("component", "auth_handler"),
	}
}

type userResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Role          domain.Role      `json:"role"`
	IsVerified    bool             `json:"is_verified"`
	OAuthProvider *domain.Provider `json:"oauth_provider,omitempty"`
	AvatarURL     *string          `json:"avatar,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		IsVerified:    u.IsVerified,
		OAuthProvider: u.OAuthProvider,
		AvatarURL:     u.AvatarURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name"     binding:"required"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": errDuplicateEmail})
		case errors.Is(err, domain.ErrEmailDispatch):
			c.JSON(http.StatusInternalServerError, gin.H{"error": errEmailDispatch})
		default:
			h.logger.Error("register", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully, check your email to verify your account",
	})
}

// GET /auth/verify/:code
func (h *AuthHandler) Verify(c *gin.Context) {
	_, err := h.auth.Verify(c.Request.Context(), c.Param("code"))
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrInvalidCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCode})
			return
		}
		h.logger.Error("verify email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.VerificationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	signed, err := h.issuer.Issue(user.ID)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.logger.Error("issue session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.cookie.Set(c, signed)
	c.JSON(http.StatusOK, newUserResponse(user))
}

// POST /auth/logout
// Clears the cookie only: tokens are stateless and stay valid until
// natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Status(http.StatusOK)
}

// POST /auth/auto-login
// Returns the user resolved by the session middleware.
func (h *AuthHandler) AutoLogin(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You are not logged in"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
