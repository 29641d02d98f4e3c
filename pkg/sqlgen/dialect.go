package sqlgen

import "fmt"

// Dialect selects the target engine's row-limit and placeholder conventions.
// The value doubles as the datasource adapter type name.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectSQLServer Dialect = "sqlserver"
)

// Valid reports whether the dialect is one we can execute against.
func (d Dialect) Valid() bool {
	return d == DialectPostgres || d == DialectSQLServer
}

// LimitClause returns the trailing row-limit clause for the dialect.
// Callers must have emitted an ORDER BY already; SQL Server requires one
// before OFFSET/FETCH.
func (d Dialect) LimitClause(n int) string {
	switch d {
	case DialectSQLServer:
		return fmt.Sprintf("OFFSET 0 ROWS FETCH FIRST %d ROWS ONLY", n)
	default:
		return fmt.Sprintf("FETCH FIRST %d ROWS ONLY", n)
	}
}
