// Package customer resolves whether a CPF belongs to a known customer.
//
// The resolver depends only on two contracts: a SecretStore that hands out
// database credentials by name, and a Datastore that opens a scoped session able
// to answer a single existence question. Every call fetches credentials fresh,
// opens its own session and releases it before returning.
package customer

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	dErrors "cpfgate/pkg/domain-errors"
)

// Credentials authenticate against the customer datastore. They live only for
// the duration of one Resolve call.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", "[redacted]"),
	)
}

// SecretStore fetches datastore credentials by secret identifier.
type SecretStore interface {
	Fetch(ctx context.Context, secretID string) (Credentials, error)
}

// Datastore opens sessions against the customer database.
type Datastore interface {
	Open(ctx context.Context, creds Credentials) (Session, error)
}

// Session is a scoped datastore connection. Close must be called exactly once.
type Session interface {
	// ExistsByColumn reports whether a row with column = value exists. value is
	// always bound as a query parameter.
	ExistsByColumn(ctx context.Context, table, column, value string) (bool, error)
	Close(ctx context.Context) error
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Found bool
}

// Lookup names where existence is checked. Table and column are operator
// configuration, never request input.
type Lookup struct {
	SecretID string
	// RequireSecretID is set for backends that resolve credentials by name.
	RequireSecretID bool
	Table           string
	Column          string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is an acceptable table or column name:
// an optional schema qualifier plus a plain SQL identifier.
func ValidIdentifier(name string) bool {
	return len(name) <= 127 && identifierPattern.MatchString(name)
}

// ErrConfiguration is returned for any missing or malformed lookup setting.
var ErrConfiguration = dErrors.New(dErrors.CodeConfiguration, "configuration error")

// Validate checks that the lookup is complete and uses allow-listed identifiers.
func (l Lookup) Validate() error {
	if l.RequireSecretID && strings.TrimSpace(l.SecretID) == "" {
		return ErrConfiguration
	}
	if l.Table == "" || l.Column == "" {
		return ErrConfiguration
	}
	if !ValidIdentifier(l.Table) || !ValidIdentifier(l.Column) {
		return ErrConfiguration
	}
	return nil
}
