// Package secrets provides the customer.SecretStore implementations.
package secrets

import (
	"fmt"

	"cpfgate/pkg/platform/sentinel"
)

var (
	// ErrSecretNotFound means the named secret does not exist.
	ErrSecretNotFound = fmt.Errorf("secret %w", sentinel.ErrNotFound)
	// ErrSecretMalformed means the secret exists but is not a {username, password} document.
	ErrSecretMalformed = fmt.Errorf("secret malformed: %w", sentinel.ErrInvalidState)
)

// Backend names accepted by SECRET_BACKEND.
const (
	BackendAWS = "aws"
	BackendEnv = "env"
)
