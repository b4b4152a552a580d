package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"subscription.charged","payload":{}}`)
	secret := "whsec_test"
	validSig := Sign(payload, secret)

	assert.Equal(t, VerdictValid, VerifySignature(payload, validSig, secret))
	assert.Equal(t, VerdictValid, VerifySignature(payload, "  "+validSig+"\n", secret))
	assert.Equal(t, VerdictInvalid, VerifySignature(payload, "deadbeef", secret))
	assert.Equal(t, VerdictInvalid, VerifySignature(payload, "not-hex", secret))
	assert.Equal(t, VerdictInvalid, VerifySignature(payload, "", secret))
	assert.Equal(t, VerdictSkipped, VerifySignature(payload, "", ""))
	assert.Equal(t, VerdictSkipped, VerifySignature(payload, "anything", "   "))
}

func TestVerifySignature_FlippedByteRejected(t *testing.T) {
	payload := []byte(`{"event":"subscription.charged","payload":{"subscription":{"entity":{"id":"sub_1"}}}}`)
	secret := "whsec_test"
	sig := Sign(payload, secret)

	for i := range payload {
		tampered := append([]byte(nil), payload...)
		tampered[i] ^= 0x01
		if got := VerifySignature(tampered, sig, secret); got != VerdictInvalid {
			t.Fatalf("byte %d flipped: expected invalid verdict, got %q", i, got)
		}
	}
}

func TestVerifyToken(t *testing.T) {
	assert.Equal(t, VerdictValid, VerifyToken("tok_123", "tok_123"))
	assert.Equal(t, VerdictInvalid, VerifyToken("tok_124", "tok_123"))
	assert.Equal(t, VerdictInvalid, VerifyToken("", "tok_123"))
	assert.Equal(t, VerdictSkipped, VerifyToken("tok_123", ""))
}
