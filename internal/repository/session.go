package repository

import (
	"context"
	"time"

	"github.com/kwarecom/hrmkit/internal/domain"
)

// SessionRepository abstracts per-caller session storage so the auth
// gateway has no dependency on any particular backend. Records are keyed
// by the opaque session ID carried in the session cookie.
type SessionRepository interface {
	// Get returns the record for sid, or domain.ErrSessionNotFound.
	Get(ctx context.Context, sid string) (*domain.Session, error)
	// Set creates or overwrites the record for sid.
	Set(ctx context.Context, sid string, s domain.Session) error
	// Clear removes the record for sid. Clearing an absent sid is a no-op.
	Clear(ctx context.Context, sid string) error
	// DeleteIdle removes up to limit records not touched since cutoff,
	// returning how many were removed. Used by the store janitor.
	DeleteIdle(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
