package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cpfgate/internal/customer"
)

// PQDatastore opens a single-connection database/sql handle per session using
// the lib/pq driver.
type PQDatastore struct {
	settings Settings
}

func NewPQDatastore(settings Settings) *PQDatastore {
	return &PQDatastore{settings: settings}
}

func (d *PQDatastore) Open(ctx context.Context, creds customer.Credentials) (customer.Session, error) {
	connector, err := pq.NewConnector(d.settings.DSN(creds))
	if err != nil {
		return nil, fmt.Errorf("configure customer database: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to customer database: %w", err)
	}
	return &pqSession{db: db}, nil
}

type pqSession struct {
	db *sql.DB
}

func (s *pqSession) ExistsByColumn(ctx context.Context, table, column, value string) (bool, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return false, err
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	query := existsQuery(strings.Join(parts, "."), pq.QuoteIdentifier(column))

	var one int
	err := s.db.QueryRowContext(ctx, query, value).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query customer existence: %w", err)
	}
	return true, nil
}

func (s *pqSession) Close(_ context.Context) error {
	return s.db.Close()
}
