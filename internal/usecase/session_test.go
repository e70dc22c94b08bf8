package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kwarecom/hrmkit/internal/domain"
	"github.com/kwarecom/hrmkit/internal/usecase"
)

func newSessions() *usecase.Sessions {
	return usecase.NewSessions([]byte(testSecret))
}

func TestCreateDecode_RoundTrip(t *testing.T) {
	s := newSessions()
	issuedAt := time.Now().Unix()

	token, err := s.Create(domain.VerifiedIdentity{Email: testEmail, IssuedAt: issuedAt})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claims, err := s.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if claims.Email != testEmail {
		t.Errorf("email = %q, want %q", claims.Email, testEmail)
	}
	if claims.Username != "Alice" {
		t.Errorf("username = %q, want Alice", claims.Username)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != 7*24*time.Hour {
		t.Errorf("exp - iat = %v, want 7 days", got)
	}
}

func TestCreate_ExpiryAnchoredToLinkIssueTime(t *testing.T) {
	s := newSessions()

	// A link minted an hour ago yields a session an hour into its life,
	// regardless of when the session itself was created.
	issuedAt := time.Now().Add(-time.Hour).Unix()
	token, err := s.Create(domain.VerifiedIdentity{Email: testEmail, IssuedAt: issuedAt})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	claims, err := s.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := claims.IssuedAt.Unix(); got != issuedAt {
		t.Errorf("iat = %d, want link issue time %d", got, issuedAt)
	}
	if got := claims.ExpiresAt.Unix(); got != issuedAt+7*24*3600 {
		t.Errorf("exp = %d, want issuedAt + 7 days", got)
	}
}

func TestDecode_ExpiredToken_ErrExpiredToken(t *testing.T) {
	s := newSessions()

	// Anchor far enough back that the 7-day lifetime has passed.
	issuedAt := time.Now().Add(-8 * 24 * time.Hour).Unix()
	token, err := s.Create(domain.VerifiedIdentity{Email: testEmail, IssuedAt: issuedAt})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = s.Decode(token)
	if !errors.Is(err, domain.ErrExpiredToken) {
		t.Errorf("want ErrExpiredToken, got %v", err)
	}
}

func TestDecode_Garbage_ErrInvalidToken(t *testing.T) {
	if _, err := newSessions().Decode("not.a.jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestDecode_WrongKey_ErrInvalidToken(t *testing.T) {
	other := usecase.NewSessions([]byte("another-secret-that-is-32-chars!!!!"))
	token, err := other.Create(domain.VerifiedIdentity{Email: testEmail, IssuedAt: time.Now().Unix()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := newSessions().Decode(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestDecode_TamperedToken_ErrInvalidToken(t *testing.T) {
	s := newSessions()
	token, err := s.Create(domain.VerifiedIdentity{Email: testEmail, IssuedAt: time.Now().Unix()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Decode(token[:len(token)-2]); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestDecode_RejectsNonHMACMethod(t *testing.T) {
	// alg=none token with plausible claims must not decode.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": testEmail,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := newSessions().Decode(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestDecode_MissingEmailClaim_ErrInvalidToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := newSessions().Decode(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		email, want string
	}{
		{"alice@example.com", "Alice"},
		{"jane.doe@example.com", "Jane.Doe"},
		{"dev@hrmkit.com", "Dev"},
		{"bob-smith@example.com", "Bob-Smith"},
		{"a3b@example.com", "A3B"},
	}
	for _, tc := range cases {
		if got := usecase.DisplayName(tc.email); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}
