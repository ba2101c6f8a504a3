package secrets

import (
	"context"
	"fmt"
	"os"

	"cpfgate/internal/customer"
)

// EnvSecretStore reads credentials from DB_USER and DB_PASSWORD. It is meant
// for local runs; the secret id is ignored.
type EnvSecretStore struct {
	lookup func(string) (string, bool)
}

func NewEnvSecretStore() *EnvSecretStore {
	return &EnvSecretStore{lookup: os.LookupEnv}
}

func (s *EnvSecretStore) Fetch(_ context.Context, _ string) (customer.Credentials, error) {
	user, _ := s.lookup("DB_USER")
	password, _ := s.lookup("DB_PASSWORD")
	if user == "" || password == "" {
		return customer.Credentials{}, fmt.Errorf("DB_USER and DB_PASSWORD must be set: %w", ErrSecretNotFound)
	}
	return customer.Credentials{Username: user, Password: password}, nil
}
