// Package token implements compact HMAC-signed tokens with typed JSON
// payloads.
//
// A token is base64url(json(payload)) + "." + base64url(hmac-sha256 prefix).
// Signature verification uses constant-time comparison. The CSRF service uses
// these tokens as its double-submit token format.
package token
