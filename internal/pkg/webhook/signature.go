package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verdict is the outcome of authenticating an inbound webhook.
type Verdict string

const (
	VerdictValid   Verdict = "valid"
	VerdictInvalid Verdict = "invalid"
	// VerdictSkipped means no secret is configured for the provider.
	VerdictSkipped Verdict = "skipped"
)

// VerifySignature checks a hex encoded HMAC-SHA256 of the raw body.
func VerifySignature(payload []byte, signatureHeader, secret string) Verdict {
	key := strings.TrimSpace(secret)
	if key == "" {
		return VerdictSkipped
	}
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		return VerdictInvalid
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return VerdictInvalid
	}

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), decodedSig) {
		return VerdictInvalid
	}
	return VerdictValid
}

// VerifyToken compares a shared token header against the configured secret.
func VerifyToken(tokenHeader, secret string) Verdict {
	key := strings.TrimSpace(secret)
	if key == "" {
		return VerdictSkipped
	}
	token := strings.TrimSpace(tokenHeader)
	if token == "" {
		return VerdictInvalid
	}
	if !hmac.Equal([]byte(token), []byte(key)) {
		return VerdictInvalid
	}
	return VerdictValid
}

// Sign returns the hex HMAC-SHA256 of payload. Used by tests and replay tooling.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
