package secrets

import "errors"

var (
	// ErrSecretTooShort is returned when the master secret is below MinSecretLength bytes.
	ErrSecretTooShort = errors.New("secrets: master secret too short")

	// ErrEmptyPurpose is returned when no derivation purpose is given.
	ErrEmptyPurpose = errors.New("secrets: empty derivation purpose")

	// ErrDerivationFailed is returned when HKDF expansion fails.
	ErrDerivationFailed = errors.New("secrets: key derivation failed")
)
