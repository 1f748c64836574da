package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of derived keys in bytes.
const KeySize = 32

// salt provides domain separation from any other HKDF use of the same secret.
const salt = "topsteel-keys-v1"

// MinSecretLength is the minimum accepted master secret length. Shorter
// secrets make offline HMAC brute force practical.
const MinSecretLength = 32

// DeriveKey expands a master secret into an independent 32-byte key for the
// given purpose. Distinct purposes always yield unrelated keys, so one master
// secret can safely back multiple subsystems (token signing, fingerprinting)
// without key reuse.
func DeriveKey(master []byte, purpose string) ([]byte, error) {
	if len(master) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if purpose == "" {
		return nil, ErrEmptyPurpose
	}

	r := hkdf.New(sha256.New, master, []byte(salt), []byte(purpose))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrDerivationFailed, err)
	}
	return key, nil
}

// GenerateKey returns a fresh random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
