// Package mssql implements the Microsoft SQL Server datasource adapter.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
)

// Adapter provides SQL Server connectivity checks. Connections use
// database/sql's own pooling; each adapter owns its *sql.DB.
type Adapter struct {
	config *Config
	db     *sql.DB
}

func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}

	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)
}

// NewAdapter creates a SQL Server adapter with its own connection pool.
// The shared ConnectionManager only manages pgx pools, so it is unused here.
func NewAdapter(ctx context.Context, cfg *Config, _ *datasource.ConnectionManager, _ uuid.UUID) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open("sqlserver", buildConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Adapter{
		config: cfg,
		db:     db,
	}, nil
}

// DB exposes the underlying connection pool for the query executor.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// TestConnection verifies the database is reachable with valid credentials.
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return datasource.NewExecError(datasource.KindConnection, err)
	}

	// Run a simple query to ensure we have database access
	var result int
	if err := a.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return datasource.NewExecError(datasource.KindConnection, err)
	}

	return nil
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ensure Adapter implements datasource.ConnectionTester at compile time.
var _ datasource.ConnectionTester = (*Adapter)(nil)
