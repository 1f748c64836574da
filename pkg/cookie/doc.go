// Package cookie provides a small cookie manager with secure defaults and
// optional HMAC signing.
//
// Defaults are Path=/, HttpOnly and SameSite=Lax; individual writes override
// them through functional options. Signed cookies append an HMAC-SHA256
// signature verified in constant time; several secrets may be configured so
// that key rotation does not invalidate outstanding cookies.
//
// The CSRF service writes its secret and double-submit cookies through this
// manager.
package cookie
