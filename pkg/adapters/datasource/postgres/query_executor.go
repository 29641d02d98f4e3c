package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
)

// QueryExecutor provides bounded PostgreSQL query execution.
type QueryExecutor struct {
	pool         *pgxpool.Pool
	connMgr      *datasource.ConnectionManager
	datasourceID uuid.UUID
	ownedPool    bool // true if we created the pool (for tests or direct instantiation)
}

// NewQueryExecutor creates a PostgreSQL query executor using the connection manager.
// If connMgr is nil, creates an unmanaged pool (for tests or direct instantiation).
func NewQueryExecutor(ctx context.Context, cfg *Config, connMgr *datasource.ConnectionManager, datasourceID uuid.UUID) (*QueryExecutor, error) {
	connStr := buildConnectionString(cfg)

	if connMgr == nil {
		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		return &QueryExecutor{
			pool:      pool,
			ownedPool: true,
		}, nil
	}

	pool, err := connMgr.GetOrCreatePool(ctx, datasourceID, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get pooled connection: %w", err)
	}

	return &QueryExecutor{
		pool:         pool,
		connMgr:      connMgr,
		datasourceID: datasourceID,
		ownedPool:    false,
	}, nil
}

// Query runs a parameterized SELECT with positional $1, $2, ... placeholders
// and fetches at most maxRows rows. The cap is applied at fetch time, not by
// rewriting the statement: rows are read incrementally and one extra Next()
// call detects whether the result was cut short, which sets Truncated.
func (e *QueryExecutor) Query(ctx context.Context, sqlText string, params []any, maxRows int) (*datasource.ResultBatch, error) {
	effective := datasource.ClampLimit(maxRows)

	rows, err := e.pool.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]datasource.ColumnInfo, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = datasource.ColumnInfo{
			Name: string(fd.Name),
			Type: pgTypeNameFromOID(fd.DataTypeOID),
		}
	}

	resultRows := make([]map[string]any, 0, effective)
	truncated := false
	for rows.Next() {
		if len(resultRows) == effective {
			truncated = true
			break
		}

		values, err := rows.Values()
		if err != nil {
			return nil, classifyError(ctx, err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col.Name] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if !truncated {
		if err := rows.Err(); err != nil {
			return nil, classifyError(ctx, err)
		}
	}

	return &datasource.ResultBatch{
		Columns:   columns,
		Rows:      resultRows,
		RowCount:  len(resultRows),
		Truncated: truncated,
	}, nil
}

// Close releases the executor (but NOT the pool if managed).
func (e *QueryExecutor) Close() error {
	if e.ownedPool && e.pool != nil {
		e.pool.Close()
	}
	// If using connection manager, don't close the pool - it's managed by TTL
	return nil
}

// QuoteIdentifier safely quotes a SQL identifier using PostgreSQL's
// standard double-quote quoting.
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// classifyError maps engine and driver errors onto the shared taxonomy.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return datasource.NewExecError(datasource.KindTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "57014": // query_canceled, typically statement_timeout
			return datasource.NewExecError(datasource.KindTimeout, err)
		case pgErr.Code == "42501": // insufficient_privilege
			return datasource.NewExecError(datasource.KindPermission, err)
		case strings.HasPrefix(pgErr.Code, "42"): // syntax error or access rule violation
			return datasource.NewExecError(datasource.KindSyntax, err)
		case strings.HasPrefix(pgErr.Code, "23"): // integrity constraint violation
			return datasource.NewExecError(datasource.KindConstraint, err)
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return datasource.NewExecError(datasource.KindConnection, err)
		}
		return datasource.NewExecError(datasource.KindUnknown, err)
	}

	if pgconn.Timeout(err) {
		return datasource.NewExecError(datasource.KindTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "closed pool") || strings.Contains(msg, "conn closed") {
		return datasource.NewExecError(datasource.KindConnection, err)
	}

	return datasource.NewExecError(datasource.KindUnknown, err)
}

// pgTypeNameFromOID maps PostgreSQL type OIDs to human-readable type names.
// This covers the most common types; unknown types return "UNKNOWN".
func pgTypeNameFromOID(oid uint32) string {
	switch oid {
	case 16:
		return "BOOL"
	case 17:
		return "BYTEA"
	case 18:
		return "CHAR"
	case 20:
		return "INT8"
	case 21:
		return "INT2"
	case 23:
		return "INT4"
	case 25:
		return "TEXT"
	case 114:
		return "JSON"
	case 700:
		return "FLOAT4"
	case 701:
		return "FLOAT8"
	case 790:
		return "MONEY"
	case 1042:
		return "BPCHAR"
	case 1043:
		return "VARCHAR"
	case 1082:
		return "DATE"
	case 1083:
		return "TIME"
	case 1114:
		return "TIMESTAMP"
	case 1184:
		return "TIMESTAMPTZ"
	case 1186:
		return "INTERVAL"
	case 1266:
		return "TIMETZ"
	case 1700:
		return "NUMERIC"
	case 2950:
		return "UUID"
	case 3802:
		return "JSONB"
	// Array types
	case 1000:
		return "BOOL[]"
	case 1005:
		return "INT2[]"
	case 1007:
		return "INT4[]"
	case 1016:
		return "INT8[]"
	case 1009:
		return "TEXT[]"
	case 1015:
		return "VARCHAR[]"
	case 1021:
		return "FLOAT4[]"
	case 1022:
		return "FLOAT8[]"
	case 2951:
		return "UUID[]"
	case 3807:
		return "JSONB[]"
	default:
		return "UNKNOWN"
	}
}

// Ensure QueryExecutor implements datasource.QueryExecutor at compile time.
var _ datasource.QueryExecutor = (*QueryExecutor)(nil)
