package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kwarecom/hrmkit/internal/domain"
)

// SessionTTL is the lifetime of a session token, anchored to the magic
// link's issue time. A link verified late in its window yields a session
// correspondingly closer to its own expiry.
const SessionTTL = 7 * 24 * time.Hour

// Sessions issues and decodes the signed session tokens (HS256 JWTs) that
// prove a prior successful login.
type Sessions struct {
	key []byte
}

func NewSessions(key []byte) *Sessions {
	return &Sessions{key: key}
}

// Create signs a session token for a verified identity.
func (s *Sessions) Create(v domain.VerifiedIdentity) (string, error) {
	claims := jwt.MapClaims{
		"email":    v.Email,
		"username": DisplayName(v.Email),
		"iat":      v.IssuedAt,
		"exp":      v.IssuedAt + int64(SessionTTL.Seconds()),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Decode verifies signature and expiry. An expired but well-formed token
// maps to ErrExpiredToken; every structural or cryptographic failure maps
// to ErrInvalidToken.
func (s *Sessions) Decode(token string) (domain.SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SessionClaims{}, domain.ErrExpiredToken
		}
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}

	claimEmail, _ := mc["email"].(string)
	if claimEmail == "" {
		return domain.SessionClaims{}, domain.ErrInvalidToken
	}
	username, _ := mc["username"].(string)

	claims := domain.SessionClaims{Email: claimEmail, Username: username}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// DisplayName derives the user-facing name from the email's local part,
// capitalizing the first letter of each run ("jane.doe" -> "Jane.Doe").
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	b.Grow(len(local))
	prevLetter := false
	for _, r := range local {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
