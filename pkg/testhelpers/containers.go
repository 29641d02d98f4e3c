// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestImage is the PostgreSQL image used for integration tests.
const PostgresTestImage = "postgres:16-alpine"

// TestDB holds a shared test database container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresTestImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "marketdata_test",
			"POSTGRES_USER":     "quantrail",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://quantrail:test_password@%s:%s/marketdata_test?sslmode=disable",
		host, port.Port())

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection with retry
	for i := 0; i < 10; i++ {
		if err := pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	if _, err := pool.Exec(ctx, tradingSchema); err != nil {
		return nil, fmt.Errorf("failed to load trading schema: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		ConnStr:   connStr,
	}, nil
}

// Host returns the mapped host and port of the shared container.
func (db *TestDB) Host(ctx context.Context) (string, int, error) {
	host, err := db.Container.Host(ctx)
	if err != nil {
		return "", 0, err
	}
	port, err := db.Container.MappedPort(ctx, "5432")
	if err != nil {
		return "", 0, err
	}
	return host, port.Int(), nil
}

// tradingSchema is the fixture loaded into the test database: a small fact
// table plus a dimension table with enough rows to exercise joins,
// aggregation, date filtering, and row-cap truncation.
const tradingSchema = `
CREATE TABLE IF NOT EXISTS symbols (
    symbol_id   BIGINT PRIMARY KEY,
    ticker      TEXT NOT NULL,
    exchange    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
    trade_id    BIGINT PRIMARY KEY,
    symbol_id   BIGINT REFERENCES symbols(symbol_id),
    quantity    NUMERIC NOT NULL,
    price       NUMERIC NOT NULL,
    total_value NUMERIC NOT NULL,
    executed_at TIMESTAMPTZ NOT NULL
);

INSERT INTO symbols (symbol_id, ticker, exchange) VALUES
    (1, 'AAPL', 'NASDAQ'),
    (2, 'MSFT', 'NASDAQ'),
    (3, 'VOD', 'LSE')
ON CONFLICT DO NOTHING;

INSERT INTO trades (trade_id, symbol_id, quantity, price, total_value, executed_at)
SELECT
    n,
    (n % 3) + 1,
    10 * n,
    100 + n,
    (10 * n) * (100 + n),
    TIMESTAMPTZ '2026-01-01 09:30:00+00' + (n || ' hours')::interval
FROM generate_series(1, 50) AS n
ON CONFLICT DO NOTHING;
`
