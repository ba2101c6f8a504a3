package customer

import (
	"context"
	"strings"
)

// GuestPrefix marks identifiers the PrefixResolver treats as non-customers.
const GuestPrefix = "000"

// PrefixResolver is the deterministic, I/O-free resolver used by the mock
// strategy: every identifier is a customer unless it starts with GuestPrefix.
type PrefixResolver struct{}

// Resolve never fails.
func (PrefixResolver) Resolve(_ context.Context, cpf string) (Resolution, error) {
	return Resolution{Found: !strings.HasPrefix(cpf, GuestPrefix)}, nil
}

// CheckConfig always succeeds.
func (PrefixResolver) CheckConfig() error {
	return nil
}
