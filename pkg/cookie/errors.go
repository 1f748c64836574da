package cookie

import "errors"

var (
	// ErrNoSecret is returned when the manager is constructed without any usable secret.
	ErrNoSecret = errors.New("cookie: no secret provided")

	// ErrSecretTooShort is returned when a secret is below the minimum length.
	ErrSecretTooShort = errors.New("cookie: secret too short")

	// ErrNotFound is returned when the request carries no cookie with the given name.
	ErrNotFound = errors.New("cookie: not found")

	// ErrBadSignature is returned when a signed cookie fails verification.
	ErrBadSignature = errors.New("cookie: invalid signature")
)
