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
	"github.com/kwarecom/hrmkit/config"
	"github.com/kwarecom/hrmkit/internal/email"
	"github.com/kwarecom/hrmkit/internal/health"
	"github.com/kwarecom/hrmkit/internal/infrastructure/postgres"
	ctxlog "github.com/kwarecom/hrmkit/internal/log"
	"github.com/kwarecom/hrmkit/internal/metrics"
	"github.com/kwarecom/hrmkit/internal/repository"
	"github.com/kwarecom/hrmkit/internal/session"
	"github.com/kwarecom/hrmkit/internal/signature"
	httptransport "github.com/kwarecom/hrmkit/internal/transport/http"
	"github.com/kwarecom/hrmkit/internal/transport/http/handler"
	"github.com/kwarecom/hrmkit/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

const janitorInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.SessionRepository
	var db health.Pinger
	if cfg.SessionBackend == "postgres" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()
		logger.Info("db connected")

		store = postgres.NewSessionRepository(pool)
		db = pool
	} else {
		store = session.NewMemoryStore()
	}

	metrics.Register()
	checker := health.NewChecker(db, logger, prometheus.DefaultRegisterer)

	codec := signature.NewCodec([]byte(cfg.SecretKey))
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	links := usecase.NewMagicLinks(codec, sender, cfg.AppOrigin, logger)
	sessions := usecase.NewSessions([]byte(cfg.SecretKey))

	authHandler := handler.NewAuthHandler(links, sessions, store, cfg.LoginRoute, cfg.DashboardRoute, logger)

	janitor := session.NewJanitor(store, janitorInterval, usecase.SessionTTL, logger)
	go janitor.Start(ctx)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(cfg, logger, authHandler, sessions, store),
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
