package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kwarecom/hrmkit/internal/domain"
	"github.com/kwarecom/hrmkit/internal/session"
)

func TestMemoryStore_GetMissing_ErrSessionNotFound(t *testing.T) {
	store := session.NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("want ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_SetGet(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	rec := domain.Session{Token: "jwt-1", Authenticated: true}
	if err := store.Set(ctx, "sid-1", rec); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "jwt-1" || !got.Authenticated {
		t.Errorf("got %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt was not stamped")
	}
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "sid-1", domain.Session{Token: "old", Authenticated: true})
	_ = store.Set(ctx, "sid-1", domain.Session{Token: "new", Authenticated: true})

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "new" {
		t.Errorf("token = %q, want new", got.Token)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "sid-1", domain.Session{Token: "jwt-1", Authenticated: true})
	if err := store.Clear(ctx, "sid-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("want ErrSessionNotFound after clear, got %v", err)
	}

	// Clearing again is a no-op.
	if err := store.Clear(ctx, "sid-1"); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestMemoryStore_DeleteIdle(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	stale := time.Now().Add(-8 * 24 * time.Hour)
	_ = store.Set(ctx, "stale-1", domain.Session{Token: "a", Authenticated: true, UpdatedAt: stale})
	_ = store.Set(ctx, "stale-2", domain.Session{Token: "b", Authenticated: true, UpdatedAt: stale})
	_ = store.Set(ctx, "fresh", domain.Session{Token: "c", Authenticated: true})

	removed, err := store.DeleteIdle(ctx, time.Now().Add(-7*24*time.Hour), 100)
	if err != nil {
		t.Fatalf("delete idle: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session was pruned: %v", err)
	}
	if _, err := store.Get(ctx, "stale-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("stale session survived: %v", err)
	}
}

func TestMemoryStore_DeleteIdle_HonorsLimit(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	stale := time.Now().Add(-8 * 24 * time.Hour)
	for _, sid := range []string{"a", "b", "c"} {
		_ = store.Set(ctx, sid, domain.Session{Token: sid, Authenticated: true, UpdatedAt: stale})
	}

	removed, err := store.DeleteIdle(ctx, time.Now(), 2)
	if err != nil {
		t.Fatalf("delete idle: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2 (limit)", removed)
	}
}
