package decision

// State is the terminal state reached for one request.
type State string

const (
	StateNoIdentifier         State = "no_identifier"
	StateInvalidFormat        State = "invalid_format"
	StateConfigurationMissing State = "configuration_missing"
	StateResolverError        State = "resolver_error"
	StateResolvedFound        State = "resolved_found"
	StateResolvedNotFound     State = "resolved_not_found"
	StateInternalError        State = "internal_error"
)

// Kind is the decision outcome.
type Kind string

const (
	KindAllow Kind = "allow"
	KindDeny  Kind = "deny"
	KindIssue Kind = "issue"
)

// Fixed reason vocabulary. Reasons are shown to callers and never carry
// error text.
const (
	ReasonNotProvided   = "CPF not provided"
	ReasonInvalid       = "CPF invalid"
	ReasonConfiguration = "configuration error"
	ReasonDatabase      = "Database error"
	ReasonNotFound      = "CPF not found"
	ReasonInternal      = "Internal server error"
)

// DenyPrincipal is the principal rendered on Deny.
const DenyPrincipal = "user"

// Input is what the request adapter extracted.
type Input struct {
	// CPF is the raw identifier, empty when absent.
	CPF string
}

// Decision is the engine output. CPF is the identifier as used for lookup
// (normalized when the strategy validates format).
type Decision struct {
	State     State
	Kind      Kind
	Reason    string
	Principal string
	CPF       string
	Customer  bool
}

// Granted reports whether the decision lets the caller through (Allow or Issue).
func (d Decision) Granted() bool {
	return d.Kind == KindAllow || d.Kind == KindIssue
}
