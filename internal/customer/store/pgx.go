package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"cpfgate/internal/customer"
)

// PgxDatastore opens one pgx connection per session.
type PgxDatastore struct {
	settings Settings
}

func NewPgxDatastore(settings Settings) *PgxDatastore {
	return &PgxDatastore{settings: settings}
}

func (d *PgxDatastore) Open(ctx context.Context, creds customer.Credentials) (customer.Session, error) {
	conn, err := pgx.Connect(ctx, d.settings.DSN(creds))
	if err != nil {
		return nil, fmt.Errorf("connect to customer database: %w", err)
	}
	return &pgxSession{conn: conn}, nil
}

type pgxSession struct {
	conn *pgx.Conn
}

func (s *pgxSession) ExistsByColumn(ctx context.Context, table, column, value string) (bool, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return false, err
	}
	query := existsQuery(
		pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		pgx.Identifier{column}.Sanitize(),
	)

	var one int
	err := s.conn.QueryRow(ctx, query, value).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query customer existence: %w", err)
	}
	return true, nil
}

func (s *pgxSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
