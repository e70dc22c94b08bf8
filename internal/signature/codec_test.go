package signature_test

import (
	"encoding/hex"
	"testing"

	"github.com/kwarecom/hrmkit/internal/signature"
)

const testSecret = "codec-test-secret-at-least-32-chars!!"

func TestSign_Deterministic(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))

	first := c.Sign("alice@example.com", 1700000000)
	second := c.Sign("alice@example.com", 1700000000)

	if first != second {
		t.Errorf("same inputs produced different signatures: %q vs %q", first, second)
	}
}

func TestSign_ProducesHexSHA256(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))

	sig := c.Sign("alice@example.com", 1700000000)
	raw, err := hex.DecodeString(sig)
	if err != nil {
		t.Fatalf("signature is not valid hex: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("digest length = %d bytes, want 32", len(raw))
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))

	sig := c.Sign("alice@example.com", 1700000000)
	if !c.Verify("alice@example.com", 1700000000, sig) {
		t.Error("signature did not verify against its own inputs")
	}
}

func TestVerify_TamperedInputs_Fail(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))
	sig := c.Sign("alice@example.com", 1700000000)

	if c.Verify("alice@example.net", 1700000000, sig) {
		t.Error("verified with altered identity")
	}
	if c.Verify("alice@example.com", 1700000001, sig) {
		t.Error("verified with altered issuedAt")
	}
	// Flip one hex character.
	tampered := []byte(sig)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	if c.Verify("alice@example.com", 1700000000, string(tampered)) {
		t.Error("verified with altered signature")
	}
}

func TestVerify_TruncatedSignature_Fails(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))
	sig := c.Sign("alice@example.com", 1700000000)

	if c.Verify("alice@example.com", 1700000000, sig[:len(sig)-1]) {
		t.Error("verified with truncated signature")
	}
}

func TestVerify_DifferentSecret_Fails(t *testing.T) {
	sig := signature.NewCodec([]byte(testSecret)).Sign("alice@example.com", 1700000000)

	other := signature.NewCodec([]byte("another-secret-that-is-32-chars!!!!"))
	if other.Verify("alice@example.com", 1700000000, sig) {
		t.Error("verified with a different secret")
	}
}

func TestVerify_NonHexSignature_Fails(t *testing.T) {
	c := signature.NewCodec([]byte(testSecret))

	if c.Verify("alice@example.com", 1700000000, "not-hex-at-all") {
		t.Error("verified a non-hex signature")
	}
}
