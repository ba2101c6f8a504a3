//go:build integration

package containers

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers Postgres instance seeded with a
// customers table.
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
}

const seedCustomers = `
CREATE TABLE IF NOT EXISTS public.customers (
	id  SERIAL PRIMARY KEY,
	cpf CHAR(11) NOT NULL UNIQUE
);`

// NewPostgresContainer starts Postgres and creates public.customers. The
// container is terminated when the test finishes.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("crm"),
		tcpostgres.WithUsername("cpfgate"),
		tcpostgres.WithPassword("cpfgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("failed to parse postgres URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse postgres port: %v", err)
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, seedCustomers); err != nil {
		t.Fatalf("failed to create customers table: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		Host:      u.Hostname(),
		Port:      port,
		Database:  "crm",
		Username:  "cpfgate",
		Password:  "cpfgate",
	}
}

// InsertCustomer adds a customer row.
func (p *PostgresContainer) InsertCustomer(ctx context.Context, t *testing.T, cpf string) {
	t.Helper()
	dsn := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.Username, p.Password),
		Host:     p.Host + ":" + strconv.Itoa(p.Port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}).String()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, "INSERT INTO public.customers (cpf) VALUES ($1) ON CONFLICT DO NOTHING", cpf); err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
}
