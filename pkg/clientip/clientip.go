package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the originating client IP of an HTTP request.
//
// Resolution order:
//  1. X-Forwarded-For (first valid address in the chain)
//  2. X-Real-IP (nginx reverse proxy)
//  3. RemoteAddr
//
// The returned string is a normalized IP without port, or empty when nothing
// parseable was found.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for part := range strings.SplitSeq(forwarded, ",") {
			if ip := normalize(part); ip != "" {
				return ip
			}
		}
	}

	if ip := normalize(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP.
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

// normalize validates and canonicalizes an IP address string.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
