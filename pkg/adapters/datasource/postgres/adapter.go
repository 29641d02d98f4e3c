// Package postgres implements the PostgreSQL datasource adapter.
package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
)

// Adapter provides PostgreSQL connectivity checks.
type Adapter struct {
	config    *Config
	pool      *pgxpool.Pool
	ownedPool bool
}

func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Database,
		sslMode,
	)
}

// NewAdapter creates a PostgreSQL connection tester using the connection manager.
// If connMgr is nil, creates an unmanaged pool (for tests or direct instantiation).
func NewAdapter(ctx context.Context, cfg *Config, connMgr *datasource.ConnectionManager, datasourceID uuid.UUID) (*Adapter, error) {
	connStr := buildConnectionString(cfg)

	if connMgr == nil {
		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		return &Adapter{
			config:    cfg,
			pool:      pool,
			ownedPool: true,
		}, nil
	}

	pool, err := connMgr.GetOrCreatePool(ctx, datasourceID, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get pooled connection: %w", err)
	}

	return &Adapter{
		config: cfg,
		pool:   pool,
	}, nil
}

// TestConnection verifies the datasource is reachable.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return datasource.NewExecError(datasource.KindConnection, err)
	}
	return nil
}

// Close releases the adapter (but NOT the pool if managed).
func (a *Adapter) Close() error {
	if a.ownedPool && a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// Ensure Adapter implements datasource.ConnectionTester at compile time.
var _ datasource.ConnectionTester = (*Adapter)(nil)
