package decision

import (
	"errors"
	"fmt"
)

// ErrorPolicy selects what a resolver failure turns into.
type ErrorPolicy string

const (
	// FailClosed denies with "Database error".
	FailClosed ErrorPolicy = "fail_closed"
	// FailOpen issues a guest token (customer=false).
	FailOpen ErrorPolicy = "fail_open"
)

// Output selects the rendered artifact. A strategy never mixes the two.
type Output string

const (
	OutputPolicy Output = "policy"
	OutputToken  Output = "token"
)

// Strategy is the full set of knobs that distinguish deployments. It is
// chosen once at construction.
type Strategy struct {
	Name            string
	ValidateFormat  bool
	OnResolverError ErrorPolicy
	// GuestIssuance issues customer=false tokens for unknown CPFs instead of denying.
	GuestIssuance bool
	Output        Output
	// AllowInsecureKey lets the signer fall back to the labeled insecure key.
	AllowInsecureKey bool
}

// PolicyStrategy renders IAM-style policies and denies on any resolver error.
func PolicyStrategy() Strategy {
	return Strategy{
		Name:            "policy",
		ValidateFormat:  false,
		OnResolverError: FailClosed,
		Output:          OutputPolicy,
	}
}

// TokenStrategy issues signed tokens and degrades to guest tokens when the
// customer datastore cannot answer.
func TokenStrategy() Strategy {
	return Strategy{
		Name:            "token",
		ValidateFormat:  true,
		OnResolverError: FailOpen,
		GuestIssuance:   true,
		Output:          OutputToken,
	}
}

// MockStrategy issues tokens from the prefix resolver. Format validation is off
// so fixture identifiers with bad check digits still get tokens.
func MockStrategy() Strategy {
	return Strategy{
		Name:             "mock",
		ValidateFormat:   false,
		OnResolverError:  FailOpen,
		GuestIssuance:    true,
		Output:           OutputToken,
		AllowInsecureKey: true,
	}
}

// StrategyByName returns the preset called name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "policy":
		return PolicyStrategy(), nil
	case "token":
		return TokenStrategy(), nil
	case "mock":
		return MockStrategy(), nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q", name)
	}
}

// Validate rejects knob combinations that cannot be rendered.
func (s Strategy) Validate() error {
	var errs []error
	switch s.Output {
	case OutputPolicy, OutputToken:
	default:
		errs = append(errs, fmt.Errorf("strategy %s: unknown output %q", s.Name, s.Output))
	}
	switch s.OnResolverError {
	case FailClosed, FailOpen:
	default:
		errs = append(errs, fmt.Errorf("strategy %s: unknown resolver error policy %q", s.Name, s.OnResolverError))
	}
	if s.Output == OutputPolicy && (s.OnResolverError == FailOpen || s.GuestIssuance) {
		errs = append(errs, fmt.Errorf("strategy %s: policy output cannot issue guest decisions", s.Name))
	}
	return errors.Join(errs...)
}
