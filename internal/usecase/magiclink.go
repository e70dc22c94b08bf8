package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/kwarecom/hrmkit/internal/domain"
	"github.com/kwarecom/hrmkit/internal/email"
	"github.com/kwarecom/hrmkit/internal/signature"
)

// LinkTTL is the magic-link validity window. Fixed, not configurable: a
// link minted at T verifies up to and including T+30m.
const LinkTTL = 30 * time.Minute

const linkSubject = "ACCOUNT SIGNIN - HRMkit"

// MagicLinks mints time-boxed sign-in links and verifies inbound ones.
// Links are never persisted server-side: validity is carried entirely by
// the issuedAt parameter and its keyed signature.
type MagicLinks struct {
	codec  *signature.Codec
	email  email.Sender
	origin string
	logger *slog.Logger
	now    func() time.Time
}

func NewMagicLinks(codec *signature.Codec, sender email.Sender, origin string, logger *slog.Logger) *MagicLinks {
	return &MagicLinks{
		codec:  codec,
		email:  sender,
		origin: origin,
		logger: logger.With("component", "magic_links"),
		now:    time.Now,
	}
}

// Issue builds the sign-in URL for identity and emails it. baseURL is the
// verification endpoint origin; empty means the configured default. The
// constructed URL is returned so callers (and tests) can use it without a
// live mail server.
func (m *MagicLinks) Issue(ctx context.Context, identity, baseURL string) (string, error) {
	if baseURL == "" {
		baseURL = m.origin + "/auth"
	}

	issuedAt := m.now().Unix()
	sig := m.codec.Sign(identity, issuedAt)

	q := url.Values{}
	q.Set("identity", identity)
	q.Set("issuedAt", strconv.FormatInt(issuedAt, 10))
	q.Set("signature", sig)
	link := baseURL + "?" + q.Encode()

	if err := m.email.Send(ctx, identity, linkSubject, linkBody(link)); err != nil {
		m.logger.Error("magic link delivery failed", "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	return link, nil
}

// Verify validates an inbound link's parameters against the clock and the
// shared secret. Checks run in order: presence, expiry, signature. A valid
// link is NOT consumed; the same parameters verify again until the window
// closes.
func (m *MagicLinks) Verify(identity, issuedAt, sig string, now time.Time) (domain.VerifiedIdentity, error) {
	if identity == "" || issuedAt == "" || sig == "" {
		return domain.VerifiedIdentity{}, domain.ErrMalformedLink
	}

	ts, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		return domain.VerifiedIdentity{}, domain.ErrMalformedLink
	}

	if now.Unix()-ts > int64(LinkTTL.Seconds()) {
		return domain.VerifiedIdentity{}, domain.ErrLinkExpired
	}

	if !m.codec.Verify(identity, ts, sig) {
		return domain.VerifiedIdentity{}, domain.ErrInvalidSignature
	}

	return domain.VerifiedIdentity{Email: identity, IssuedAt: ts}, nil
}

func linkBody(link string) string {
	return fmt.Sprintf(`<html>
	<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<div style="padding: 20px; background-color: #f9f9f9;">
			<h2>Secure Access Link</h2>
			<p>Click the button below to securely access your HRMkit dashboard:</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="%s" style="background-color: #4CAF50; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; font-weight: bold;">Access HRMkit</a>
			</div>
			<p style="color: #666; font-size: 12px;">This link will expire in 30 minutes for security purposes.</p>
			<p style="color: #666; font-size: 12px;">If you didn't request this login, please ignore this email.</p>
		</div>
	</body>
</html>`, link)
}
