package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// SecretKey signs both the magic-link signature and the session JWT.
	SecretKey string `env:"SECRET_KEY,required" validate:"required,min=32"`

	// AppOrigin is the externally reachable origin used to build magic links.
	AppOrigin      string `env:"APP_ORIGIN" envDefault:"http://127.0.0.1:8080" validate:"url"`
	LoginRoute     string `env:"LOGIN_ROUTE" envDefault:"/login" validate:"startswith=/"`
	DashboardRoute string `env:"DASHBOARD_ROUTE" envDefault:"/dashboard" validate:"startswith=/"`

	// PublicRoutes are extra unauthenticated route prefixes on top of the
	// login route and the /auth endpoints.
	PublicRoutes []string `env:"PUBLIC_ROUTES" envSeparator:","`

	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory" validate:"oneof=memory postgres"`
	DatabaseURL    string `env:"DATABASE_URL" validate:"required_if=SessionBackend postgres"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.AppOrigin = strings.TrimRight(cfg.AppOrigin, "/")

	return cfg, nil
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
