package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/kwarecom/hrmkit/internal/repository"
)

// Janitor periodically prunes session records that have sat untouched
// longer than the session lifetime. Pure storage hygiene: token expiry is
// still decided by wall-clock comparison on each request, never here.
type Janitor struct {
	store    repository.SessionRepository
	interval time.Duration
	idleTTL  time.Duration
	logger   *slog.Logger
}

func NewJanitor(store repository.SessionRepository, interval, idleTTL time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		idleTTL:  idleTTL,
		logger:   logger.With("component", "session_janitor"),
	}
}

// Start blocks until ctx is done, sweeping on every tick.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("session janitor started", "interval", j.interval, "idle_ttl", j.idleTTL)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session janitor: shut down")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.idleTTL)

	removed, err := j.store.DeleteIdle(ctx, cutoff, 100)
	if err != nil {
		j.logger.Error("session janitor: delete idle", "error", err)
	} else if removed > 0 {
		j.logger.Info("session janitor: pruned idle sessions", "count", removed)
	}
}
