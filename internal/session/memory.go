package session

import (
	"context"
	"sync"
	"time"

	"github.com/kwarecom/hrmkit/internal/domain"
)

// MemoryStore is the default session backend: a process-local map guarded
// by a mutex. Sessions do not survive a restart; use the postgres backend
// when they must.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

func (s *MemoryStore) Get(_ context.Context, sid string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sid]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, rec domain.Session) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = rec
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *MemoryStore) DeleteIdle(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for sid, rec := range s.sessions {
		if removed >= int64(limit) {
			break
		}
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.sessions, sid)
			removed++
		}
	}
	return removed, nil
}
