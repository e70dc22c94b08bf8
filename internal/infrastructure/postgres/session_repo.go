package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kwarecom/hrmkit/internal/domain"
)

// SessionRepository persists session records in the sessions table, for
// deployments where sessions must survive a restart.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Get(ctx context.Context, sid string) (*domain.Session, error) {
	query := `SELECT token, authenticated, updated_at FROM sessions WHERE id = $1`

	var s domain.Session
	err := r.pool.QueryRow(ctx, query, sid).Scan(&s.Token, &s.Authenticated, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Set(ctx context.Context, sid string, s domain.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, token, authenticated, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE
		 SET token = EXCLUDED.token, authenticated = EXCLUDED.authenticated, updated_at = now()`,
		sid, s.Token, s.Authenticated,
	)
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context, sid string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sid)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions
		 WHERE id IN (
			SELECT id FROM sessions WHERE updated_at < $1 LIMIT $2
		 )`,
		cutoff, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
