// Package datasource defines the bounded execution layer: adapters that run
// one bound statement against a live connection under row and time limits.
package datasource

import "context"

// MaxQueryLimit is the hard cap on rows fetched per execution. Requests may
// ask for less, never for more.
const MaxQueryLimit = 1000

// ConnectionTester verifies the datasource is reachable with the supplied
// credentials. Each implementation owns its connection and must be closed.
type ConnectionTester interface {
	// TestConnection returns nil if the datasource is healthy.
	TestConnection(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// QueryExecutor runs bounded SELECT statements.
//
// Statements arrive with positional $1, $2, ... placeholders; adapters for
// engines with other conventions convert internally. Rows are fetched
// incrementally up to the row cap: hitting the cap sets the batch's
// Truncated flag, it is not an error. The context's deadline governs the
// whole execute-and-fetch span.
type QueryExecutor interface {
	// Query executes sqlText with the given parameter values and returns at
	// most maxRows rows. maxRows outside (0, MaxQueryLimit] is clamped to
	// MaxQueryLimit.
	Query(ctx context.Context, sqlText string, params []any, maxRows int) (*ResultBatch, error)

	// QuoteIdentifier quotes an identifier using the dialect's rules.
	QuoteIdentifier(name string) string

	// Close releases any resources held by the executor.
	Close() error
}

// ColumnInfo describes a result column with the engine's type name.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResultBatch holds the bounded results of one execution. Ownership passes
// to the caller.
type ResultBatch struct {
	Columns   []ColumnInfo     `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

// ClampLimit applies the row cap rules shared by all adapters.
func ClampLimit(maxRows int) int {
	if maxRows <= 0 || maxRows > MaxQueryLimit {
		return MaxQueryLimit
	}
	return maxRows
}
