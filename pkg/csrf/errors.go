package csrf

import "errors"

var (
	// ErrSecretRequired is returned when the service is created without a
	// master secret.
	ErrSecretRequired = errors.New("csrf: secret is required")

	// ErrStoreUnavailable is returned when the backing token store cannot be
	// reached.
	ErrStoreUnavailable = errors.New("csrf: token store unavailable")
)

// Validation failure reasons. These are stable identifiers surfaced in logs
// and security monitoring, never in client responses.
const (
	ReasonMissingToken        = "MISSING_TOKEN"
	ReasonInvalidFormat       = "INVALID_FORMAT"
	ReasonInvalidOrigin       = "INVALID_ORIGIN"
	ReasonInvalidReferer      = "INVALID_REFERER"
	ReasonInvalidToken        = "INVALID_TOKEN"
	ReasonDoubleSubmitFailure = "DOUBLE_SUBMIT_FAILURE"
	ReasonValidationError     = "VALIDATION_ERROR"
)

// Result describes the outcome of validating one request. AttackVector
// classifies what a failed request most likely was, for monitoring; it is
// empty on success.
type Result struct {
	Valid        bool
	Reason       string
	AttackVector string
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(reason, vector string) Result {
	return Result{Reason: reason, AttackVector: vector}
}
