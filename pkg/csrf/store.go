package csrf

import "context"

// Store tracks the set of live token hashes per session. Implementations
// must be safe for concurrent use.
//
// Tokens are stored as SHA-256 hashes; a store compromise never yields
// usable tokens. Each session holds a bounded set of hashes so a client that
// keeps requesting fresh tokens cannot grow state without limit.
type Store interface {
	// AddToken records a token hash for the session, evicting the oldest
	// hash when the session is at capacity.
	AddToken(ctx context.Context, sessionID, hash string) error

	// HasToken reports whether the hash is live for the session, without
	// consuming it.
	HasToken(ctx context.Context, sessionID, hash string) (bool, error)

	// ConsumeToken removes the hash from the session, returning whether it
	// was present. A hash can be consumed exactly once.
	ConsumeToken(ctx context.Context, sessionID, hash string) (bool, error)

	// Sweep removes expired sessions. Backends with native expiry may
	// implement it as a no-op.
	Sweep(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
