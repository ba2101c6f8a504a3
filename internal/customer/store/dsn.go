// Package store holds the Postgres-backed customer datastores. Two drivers are
// available: pgx (default) and lib/pq through database/sql.
package store

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"cpfgate/internal/customer"
)

const defaultPort = 5432

// Settings locate the customer database. Credentials are supplied per session.
type Settings struct {
	Host           string
	Port           int
	Name           string
	SSLMode        string
	ConnectTimeout time.Duration
}

// DSN renders a postgres:// connection URL for the given credentials.
func (s Settings) DSN(creds customer.Credentials) string {
	port := s.Port
	if port == 0 {
		port = defaultPort
	}
	sslmode := s.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}

	q := url.Values{}
	q.Set("sslmode", sslmode)
	if s.ConnectTimeout > 0 {
		secs := int(s.ConnectTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(creds.Username, creds.Password),
		Host:     net.JoinHostPort(s.Host, strconv.Itoa(port)),
		Path:     "/" + s.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func (s Settings) validate() error {
	if s.Host == "" || s.Name == "" {
		return fmt.Errorf("database host and name are required: %w", customer.ErrConfiguration)
	}
	return nil
}

// Driver names accepted by New.
const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

// New returns the datastore for driver.
func New(driver string, settings Settings) (customer.Datastore, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	switch driver {
	case "", DriverPgx:
		return NewPgxDatastore(settings), nil
	case DriverPQ:
		return NewPQDatastore(settings), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q: %w", driver, customer.ErrConfiguration)
	}
}

func existsQuery(table, column string) string {
	return fmt.Sprintf("SELECT 1 FROM %s WHERE %s = $1 LIMIT 1", table, column)
}

func checkIdentifiers(table, column string) error {
	if !customer.ValidIdentifier(table) || !customer.ValidIdentifier(column) {
		return fmt.Errorf("invalid lookup identifier: %w", customer.ErrConfiguration)
	}
	return nil
}
