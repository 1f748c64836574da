package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// signatureSize is the number of HMAC-SHA256 bytes appended to the payload.
// 16 bytes keeps tokens compact while leaving forgery infeasible.
const signatureSize = 16

// Generate creates a compact signed token: the JSON-encoded payload followed
// by a truncated HMAC-SHA256 signature, both base64url-encoded and joined
// with a dot. The payload is visible to the bearer; only integrity is
// protected, not confidentiality.
func Generate[T any](payload T, key []byte) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	sig := mac.Sum(nil)[:signatureSize]

	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(sig), nil
}

// Parse verifies the signature of a token produced by Generate and decodes
// its payload. Returns ErrMalformed for structurally invalid input and
// ErrBadSignature when the signature does not verify under the key.
func Parse[T any](tok string, key []byte) (T, error) {
	var payload T

	head, tail, ok := strings.Cut(tok, ".")
	if !ok {
		return payload, ErrMalformed
	}

	data, err := base64.RawURLEncoding.DecodeString(head)
	if err != nil {
		return payload, ErrMalformed
	}
	sig, err := base64.RawURLEncoding.DecodeString(tail)
	if err != nil {
		return payload, ErrMalformed
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	want := mac.Sum(nil)[:signatureSize]

	if subtle.ConstantTimeCompare(sig, want) != 1 {
		return payload, ErrBadSignature
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, ErrMalformed
	}
	return payload, nil
}

// WellFormed reports whether tok has the structural shape of a token without
// verifying its signature. Used for cheap format checks before store lookups.
func WellFormed(tok string) bool {
	head, tail, ok := strings.Cut(tok, ".")
	if !ok || head == "" || tail == "" {
		return false
	}
	if _, err := base64.RawURLEncoding.DecodeString(head); err != nil {
		return false
	}
	sig, err := base64.RawURLEncoding.DecodeString(tail)
	if err != nil {
		return false
	}
	return len(sig) == signatureSize
}
