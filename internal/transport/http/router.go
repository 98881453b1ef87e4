package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zazaborisovi/laptomania/internal/domain"
	"github.com/zazaborisovi/laptomania/internal/repository"
	"github.com/zazaborisovi/laptomania/internal/token"
	"github.com/zazaborisovi/laptomania/internal/transport/http/handler"
	"github.com/zazaborisovi/laptomania/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

type RouterDeps struct {
	Logger        *slog.Logger
	AuthHandler   *handler.AuthHandler
	OAuthHandler  *handler.OAuthHandler
	LaptopHandler *handler.LaptopHandler
	Issuer        *token.Issuer
	Users         repository.UserRepository
	ClientURL     string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(deps.ClientURL))
	r.Use(middleware.RateLimit())
	r.Use(sloggin.New(deps.Logger))
	r.Use(middleware.Metrics())

	authMW := middleware.SessionAuth(deps.Issuer, deps.Users, deps.Logger)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleModerator)

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", deps.AuthHandler.Register)
	auth.GET("/verify/:code", deps.AuthHandler.Verify)
	auth.POST("/login", deps.AuthHandler.Login)
	auth.POST("/logout", authMW, deps.AuthHandler.Logout)
	auth.POST("/auto-login", authMW, deps.AuthHandler.AutoLogin)

	oauthRoutes := r.Group("/oauth")
	oauthRoutes.GET("/:provider", deps.OAuthHandler.Redirect)
	oauthRoutes.GET("/:provider/callback", deps.OAuthHandler.Callback)

	laptops := r.Group("/laptops")
	laptops.GET("", deps.LaptopHandler.List)
	laptops.GET("/:id", deps.LaptopHandler.GetByID)
	laptops.POST("", authMW, staffOnly, deps.LaptopHandler.Create)
	laptops.PATCH("/:id", authMW, staffOnly, deps.LaptopHandler.Update)
	laptops.DELETE("/:id", authMW, staffOnly, deps.LaptopHandler.Delete)

	return r
}
