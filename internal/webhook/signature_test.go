package webhook

import (
	"strings"
	"testing"
)

func TestVerifySignature_RoundTrip(t *testing.T) {
	body := []byte(`{"id":123,"total_price":"12.50"}`)
	sig := ComputeSignature("secret", body)

	if !VerifySignature("secret", body, sig) {
		t.Fatalf("valid signature rejected")
	}
	// Leading/trailing whitespace in the header is tolerated.
	if !VerifySignature("secret", body, "  "+sig+"\n") {
		t.Fatalf("whitespace-padded signature rejected")
	}
}

func TestVerifySignature_FailClosed(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := ComputeSignature("secret", body)

	cases := []struct {
		name   string
		secret string
		body   []byte
		header string
	}{
		{"empty secret", "", body, sig},
		{"empty header", "secret", body, ""},
		{"not base64", "secret", body, "%%%not-base64%%%"},
		{"wrong secret", "other", body, sig},
		{"tampered body", "secret", []byte(`{"id":2}`), sig},
		{"truncated header", "secret", body, sig[:len(sig)-4]},
	}
	for _, tc := range cases {
		if VerifySignature(tc.secret, tc.body, tc.header) {
			t.Fatalf("%s: expected verification to fail", tc.name)
		}
	}
}

func TestVerifySignature_ExactBytesMatter(t *testing.T) {
	// Same JSON value, different serialization: signatures must differ.
	a := []byte(`{"a":1,"b":2}`)
	b := []byte(`{"b":2,"a":1}`)
	sig := ComputeSignature("secret", a)
	if VerifySignature("secret", b, sig) {
		t.Fatalf("reordered serialization should not verify")
	}
}

func TestPayloadHash(t *testing.T) {
	h := PayloadHash([]byte("hello"))
	if len(h) != 64 || strings.ToLower(h) != h {
		t.Fatalf("expected lowercase 64-char hex, got %q", h)
	}
	// Known vector for sha256("hello").
	if h != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected digest: %s", h)
	}
	if PayloadHash([]byte("hello")) != h {
		t.Fatalf("hash not deterministic")
	}
	if PayloadHash([]byte("hello!")) == h {
		t.Fatalf("distinct bodies must hash differently")
	}
}
