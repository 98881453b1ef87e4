package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Port        string `env:"PORT" envDefault:"8080" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`
	// JWTTTLHours bounds the session: the cookie max-age is derived
	// from it so the cookie never outlives the token or vice versa.
	JWTTTLHours int `env:"JWT_TTL_HOURS" envDefault:"72" validate:"min=1"`

	// ClientURL is the browser origin allowed by CORS and the base of
	// OAuth redirect destinations.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:5173" validate:"required,url"`
	// APIBaseURL is the public base of this server, used to build
	// verification links.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	VerificationSweepCron string `env:"VERIFICATION_SWEEP_CRON" envDefault:"@hourly"`

	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI    string `env:"GOOGLE_REDIRECT_URI"`
	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`
	FacebookRedirectURI  string `env:"FACEBOOK_REDIRECT_URI"`
	GitHubClientID       string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret   string `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURI    string `env:"GITHUB_REDIRECT_URI"`

	CloudinaryURL string `env:"CLOUDINARY_URL" validate:"required_if=Env production,required_if=Env staging"`
	ResendAPIKey  string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM" validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Google() OAuthProvider {
	return OAuthProvider{c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURI}
}

func (c *Config) Facebook() OAuthProvider {
	return OAuthProvider{c.FacebookClientID, c.FacebookClientSecret, c.FacebookRedirectURI}
}

func (c *Config) GitHub() OAuthProvider {
	return OAuthProvider{c.GitHubClientID, c.GitHubClientSecret, c.GitHubRedirectURI}
}

// SessionTTL is the shared lifetime of the signed token and the cookie
// carrying it.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
