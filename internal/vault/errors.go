package vault

import (
	"errors"

	"github.com/anikdutta/credvault/internal/envelope"
)

var (
	// ErrValidation means the credential failed the vendor's format rules.
	// The wrapped message carries the human-readable reason.
	ErrValidation = errors.New("credential failed format validation")

	// ErrNotFound means the vendor, service, or key record does not exist
	// (or is inactive where activity is required).
	ErrNotFound = errors.New("resource not found")

	// ErrConflict means a secret already exists for this vendor/service.
	ErrConflict = errors.New("secret already exists for this vendor/service")

	// ErrIntegrity is the crypto layer's tamper/wrong-key failure. It is
	// never downgraded to a validation or not-found error; conflating them
	// could mask tampering.
	ErrIntegrity = envelope.ErrIntegrity
)
