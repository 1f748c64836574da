package fingerprint

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/Symple44/TopSteel-sub029/pkg/clientip"
)

// Generate derives a stable request fingerprint from the client IP and
// User-Agent, keyed with a server-held secret so that the value cannot be
// forged or precomputed off the server.
//
// The fingerprint identifies a network egress point plus browser, not a user:
// all unauthenticated clients behind the same NAT with the same browser
// collapse into one fingerprint. Callers must treat it as a best-effort
// grouping key, never as an identity.
func Generate(r *http.Request, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(clientip.FromRequest(r)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(r.UserAgent()))

	// 16 bytes is plenty for a grouping key and keeps cookie-free session
	// identifiers short.
	return hex.EncodeToString(mac.Sum(nil)[:16])
}

// Match reports whether the request produces the given fingerprint.
func Match(r *http.Request, key []byte, want string) bool {
	return Generate(r, key) == want
}
