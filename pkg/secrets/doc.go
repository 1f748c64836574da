// Package secrets derives purpose-bound keys from a single master secret
// using HKDF-SHA256.
//
// The CSRF service derives its token-signing key and its fingerprint key from
// CSRF_SECRET through this package; the two keys are computationally
// unrelated even though they share a master secret.
package secrets
