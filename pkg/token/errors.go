package token

import "errors"

var (
	// ErrMalformed is returned for input that is not structurally a token.
	ErrMalformed = errors.New("token: malformed")

	// ErrBadSignature is returned when the signature does not verify.
	ErrBadSignature = errors.New("token: signature mismatch")
)
