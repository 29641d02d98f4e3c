package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
)

// QueryExecutor provides bounded SQL Server query execution.
type QueryExecutor struct {
	config *Config
	db     *sql.DB
}

// NewQueryExecutor creates a SQL Server query executor.
func NewQueryExecutor(ctx context.Context, cfg *Config, connMgr *datasource.ConnectionManager, datasourceID uuid.UUID) (*QueryExecutor, error) {
	adapter, err := NewAdapter(ctx, cfg, connMgr, datasourceID)
	if err != nil {
		return nil, err
	}

	return &QueryExecutor{
		config: cfg,
		db:     adapter.DB(),
	}, nil
}

// Query runs a parameterized SELECT with bounded results.
// Statements arrive with PostgreSQL-style $1, $2, ... placeholders; these are
// converted to SQL Server's @p1, @p2, ... named parameters. Rows are fetched
// up to the cap and one extra Next() call detects truncation.
func (e *QueryExecutor) Query(ctx context.Context, sqlText string, params []any, maxRows int) (*datasource.ResultBatch, error) {
	effective := datasource.ClampLimit(maxRows)

	queryToRun := convertPositionalParams(sqlText)

	namedParams := make([]any, len(params))
	for i, param := range params {
		namedParams[i] = sql.Named(fmt.Sprintf("p%d", i+1), param)
	}

	rows, err := e.db.QueryContext(ctx, queryToRun, namedParams...)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer rows.Close()

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	columns := make([]datasource.ColumnInfo, len(columnNames))
	for i, colName := range columnNames {
		columns[i] = datasource.ColumnInfo{
			Name: colName,
			Type: mapSQLServerType(columnTypes[i].DatabaseTypeName()),
		}
	}

	resultRows := make([]map[string]any, 0, effective)
	truncated := false
	for rows.Next() {
		if len(resultRows) == effective {
			truncated = true
			break
		}

		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, classifyError(ctx, err)
		}

		rowMap := make(map[string]any, len(columnNames))
		for i, col := range columnNames {
			val := values[i]

			// Convert []byte to string for text columns
			if b, ok := val.([]byte); ok {
				if isStringType(columnTypes[i].DatabaseTypeName()) {
					val = string(b)
				}
			}

			rowMap[col] = val
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

// QuoteIdentifier safely quotes a SQL identifier using SQL Server's
// square bracket syntax: [name]
func (e *QueryExecutor) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Close releases the connection pool.
func (e *QueryExecutor) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

var positionalParamPattern = regexp.MustCompile(`\$(\d+)`)

// convertPositionalParams rewrites $1, $2, ... to @p1, @p2, ...
func convertPositionalParams(query string) string {
	return positionalParamPattern.ReplaceAllStringFunc(query, func(match string) string {
		num, err := strconv.Atoi(match[1:])
		if err != nil {
			return match // Return unchanged if parsing fails
		}
		return fmt.Sprintf("@p%d", num)
	})
}

// classifyError maps engine and driver errors onto the shared taxonomy.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return datasource.NewExecError(datasource.KindTimeout, err)
	}

	var srvErr mssqldb.Error
	if errors.As(err, &srvErr) {
		switch srvErr.Number {
		case 102, 105, 156, 207, 208: // syntax errors, unknown column/object
			return datasource.NewExecError(datasource.KindSyntax, err)
		case 229, 230, 297, 300: // permission denied
			return datasource.NewExecError(datasource.KindPermission, err)
		case 515, 547, 2601, 2627: // null/foreign key/unique violations
			return datasource.NewExecError(datasource.KindConstraint, err)
		case 1205: // deadlock victim
			return datasource.NewExecError(datasource.KindConnection, err)
		}
		return datasource.NewExecError(datasource.KindUnknown, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unable to open tcp connection") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "login error"):
		return datasource.NewExecError(datasource.KindConnection, err)
	case strings.Contains(msg, "timeout"):
		return datasource.NewExecError(datasource.KindTimeout, err)
	}

	return datasource.NewExecError(datasource.KindUnknown, err)
}

// Ensure QueryExecutor implements datasource.QueryExecutor at compile time.
var _ datasource.QueryExecutor = (*QueryExecutor)(nil)
