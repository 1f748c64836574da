// Package clientip extracts the originating client IP address from HTTP
// requests that may have passed through reverse proxies.
//
// Spoofed or malformed header values are skipped: every candidate is parsed
// with net.ParseIP before being accepted, and the connection's RemoteAddr is
// the final fallback. The CSRF service uses the result as one input of its
// anonymous session fingerprint.
package clientip
