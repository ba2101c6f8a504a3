package ports

import (
	"context"

	"cpfgate/internal/audit"
	"cpfgate/internal/customer"
)

// CustomerResolver answers whether cpf belongs to a customer.
type CustomerResolver interface {
	Resolve(ctx context.Context, cpf string) (customer.Resolution, error)
}

// AuditPort defines the interface for emitting audit events.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
