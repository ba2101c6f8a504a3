package authorizer

import (
	"cpfgate/internal/decision"
)

const (
	PolicyVersion = "2012-10-17"
	InvokeAction  = "execute-api:Invoke"
	EffectAllow   = "Allow"
	EffectDeny    = "Deny"
	// DefaultResource is used when the request names no resource.
	DefaultResource = "*"
)

type Statement struct {
	Action   string `json:"Action"`
	Effect   string `json:"Effect"`
	Resource string `json:"Resource"`
}

type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Policy is an IAM-style authorization artifact for an API gateway.
type Policy struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument PolicyDocument    `json:"policyDocument"`
	Context        map[string]string `json:"context,omitempty"`
}

// Effect returns the effect of the single statement.
func (p Policy) Effect() string {
	if len(p.PolicyDocument.Statement) == 0 {
		return EffectDeny
	}
	return p.PolicyDocument.Statement[0].Effect
}

// RenderPolicy renders d. Anything other than Allow is a Deny.
func RenderPolicy(d decision.Decision, resource string) Policy {
	if resource == "" {
		resource = DefaultResource
	}
	if d.Kind == decision.KindAllow {
		return Policy{
			PrincipalID:    d.Principal,
			PolicyDocument: document(EffectAllow, resource),
			Context:        map[string]string{"customer": "true"},
		}
	}
	reason := d.Reason
	if reason == "" {
		reason = decision.ReasonInternal
	}
	return Policy{
		PrincipalID:    decision.DenyPrincipal,
		PolicyDocument: document(EffectDeny, resource),
		Context:        map[string]string{"reason": reason},
	}
}

func document(effect, resource string) PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Action:   InvokeAction,
			Effect:   effect,
			Resource: resource,
		}},
	}
}
