package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zazaborisovi/laptomania/config"
	"github.com/zazaborisovi/laptomania/internal/email"
	"github.com/zazaborisovi/laptomania/internal/health"
	"github.com/zazaborisovi/laptomania/internal/imagestore"
	"github.com/zazaborisovi/laptomania/internal/infrastructure/postgres"
	"github.com/zazaborisovi/laptomania/internal/infrastructure/rediscache"
	ctxlog "github.com/zazaborisovi/laptomania/internal/log"
	"github.com/zazaborisovi/laptomania/internal/metrics"
	"github.com/zazaborisovi/laptomania/internal/oauth"
	"github.com/zazaborisovi/laptomania/internal/sweeper"
	"github.com/zazaborisovi/laptomania/internal/token"
	httptransport "github.com/zazaborisovi/laptomania/internal/transport/http"
	"github.com/zazaborisovi/laptomania/internal/transport/http/handler"
	"github.com/zazaborisovi/laptomania/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb, err := rediscache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	images, err := imagestore.NewStore(cfg.Env, cfg.CloudinaryURL, logger)
	if err != nil {
		stop()
		log.Fatalf("image store: %v", err)
	}

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.SessionTTL())
	cookie := handler.SessionCookie{
		MaxAge: cfg.SessionTTL(),
		Secure: cfg.Env != "local",
	}

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sender, cfg.APIBaseURL, logger)
	authHandler := handler.NewAuthHandler(authUsecase, issuer, cookie, logger)

	oauthUsecase := usecase.NewOAuthUsecase(userRepo, buildProviders(cfg)...)
	oauthHandler := handler.NewOAuthHandler(oauthUsecase, issuer, cookie, cfg.ClientURL, logger)

	// Catalog
	laptopRepo := postgres.NewLaptopRepository(pool)
	laptopCache := rediscache.NewLaptopCache(rdb, logger)
	laptopUsecase := usecase.NewLaptopUsecase(laptopRepo, laptopCache, images, logger)
	laptopHandler := handler.NewLaptopHandler(laptopUsecase, logger)

	metrics.Register()
	redisPinger := health.PingerFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	checker := health.NewChecker(pool, redisPinger, logger, prometheus.DefaultRegisterer)

	sweep, err := sweeper.New(userRepo, logger, cfg.VerificationSweepCron)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	go sweep.Start(ctx)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterDeps{
			Logger:        logger,
			AuthHandler:   authHandler,
			OAuthHandler:  oauthHandler,
			LaptopHandler: laptopHandler,
			Issuer:        issuer,
			Users:         userRepo,
			ClientURL:     cfg.ClientURL,
		}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// buildProviders wires every OAuth provider that has credentials
// configured. Unconfigured providers simply don't resolve.
func buildProviders(cfg *config.Config) []oauth.Provider {
	var providers []oauth.Provider
	if p := cfg.Google(); p.ClientID != "" {
		providers = append(providers, oauth.NewGoogle(p.ClientID, p.ClientSecret, p.RedirectURI))
	}
	if p := cfg.Facebook(); p.ClientID != "" {
		providers = append(providers, oauth.NewFacebook(p.ClientID, p.ClientSecret, p.RedirectURI))
	}
	if p := cfg.GitHub(); p.ClientID != "" {
		providers = append(providers, oauth.NewGitHub(p.ClientID, p.ClientSecret, p.RedirectURI))
	}
	return providers
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
