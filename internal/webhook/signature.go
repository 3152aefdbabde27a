// Package webhook implements the pure, transport-free pieces of the webhook
// ingestion pipeline: signature verification, payload hashing, per-topic
// schema validation, and extraction of typed records from the upstream's
// loosely-typed JSON payloads.
//
// Nothing in this package performs I/O. The HTTP endpoint and the service
// layer compose these functions around the persistence layer.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// ComputeSignature returns the base64-encoded HMAC-SHA256 of body under
// secret, the exact value the upstream platform places in its signature
// header. Exposed so tests and local tooling can mint valid signatures.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether header is a valid signature for the exact
// raw body bytes under secret.
//
// The comparison runs over the decoded MAC bytes with hmac.Equal, so it is
// constant time with respect to the header value. Verification fails closed:
// an empty secret, a missing header, or a header that is not valid base64
// all yield false. The caller must pass the bytes as received on the wire;
// re-serialized JSON can reorder fields and silently break the signature.
func VerifySignature(secret string, body []byte, header string) bool {
	if secret == "" {
		return false
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// PayloadHash returns the lowercase SHA-256 hex digest of the raw body.
// It is the idempotency key for duplicate suppression; identical bodies
// always hash identically regardless of header jitter between deliveries.
func PayloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
