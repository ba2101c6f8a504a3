package audit

import "time"

// Category classifies audit events by their primary purpose.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Action names an audited action.
type Action string

const (
	ActionDecisionMade   Action = "decision_made"
	ActionCustomerLookup Action = "customer_lookup"
)

var actionCategories = map[Action]Category{
	ActionDecisionMade:   CategoryCompliance,
	ActionCustomerLookup: CategoryOperations,
}

// Category returns the category of a; unknown actions are operations events.
func (a Action) Category() Category {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event is transport-agnostic so publishers can fan out. It never carries the
// raw CPF: SubjectIDHash is the sha256 of the normalized identifier.
type Event struct {
	Category      Category  `json:"category"`
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	Strategy      string    `json:"strategy,omitempty"`
	State         string    `json:"state,omitempty"`
	Decision      string    `json:"decision,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Customer      bool      `json:"customer"`
	SubjectIDHash string    `json:"subject_id_hash,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty"`
	DeviceName    string    `json:"device_name,omitempty"`
}
