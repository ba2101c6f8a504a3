// Package directory looks customers up in the identity directory by CPF. It
// sits downstream of the decision core and shares only the CPF validator.
package directory

import "context"

// Record is one directory user.
type Record struct {
	Username   string            `json:"username"`
	Attributes map[string]string `json:"attributes"`
}

// Finder finds the single user whose CPF attribute equals cpf. It returns
// sentinel.ErrNotFound when none match and sentinel.ErrDuplicate when more
// than one does.
type Finder interface {
	FindByCPF(ctx context.Context, cpf string) (*Record, error)
}
