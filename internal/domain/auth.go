package domain

import (
	"errors"
	"time"
)

var (
	// Magic-link verification failures.
	ErrMalformedLink    = errors.New("magic link is missing required parameters")
	ErrLinkExpired      = errors.New("magic link has expired")
	ErrInvalidSignature = errors.New("magic link signature does not match")

	// Session token failures. Kept distinct because callers react
	// differently: an expired token is normal session aging, an invalid
	// one is dropped silently.
	ErrInvalidToken = errors.New("session token is invalid")
	ErrExpiredToken = errors.New("session token has expired")

	ErrDeliveryFailed  = errors.New("failed to send email")
	ErrSessionNotFound = errors.New("session not found")
)

// VerifiedIdentity is the outcome of a successful magic-link verification.
// IssuedAt is the link's mint time in Unix seconds; the session built from
// it anchors its own lifetime there, not at verification time.
type VerifiedIdentity struct {
	Email    string
	IssuedAt int64
}

// SessionClaims are the fields carried inside a decoded session JWT.
type SessionClaims struct {
	Email     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the per-caller record held by the session store, keyed by the
// session cookie ID. Overwritten on each login, cleared on logout or when
// the token no longer decodes.
type Session struct {
	Token         string
	Authenticated bool
	UpdatedAt     time.Time
}
