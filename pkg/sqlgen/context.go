// Package sqlgen turns an untrusted candidate SQL statement into something
// safe to execute: it sanitizes the text, validates its structure, builds a
// deterministic fallback when the candidate is rejected, and binds named
// placeholders to caller-supplied values.
package sqlgen

import (
	"strings"

	"github.com/quantrail/quantrail-engine/pkg/schema"
)

// QueryContext carries everything generation needs for one request: the
// question, the relevant slice of the catalog, and the optional date range.
// It is built once per request and must not be modified afterwards.
type QueryContext struct {
	// Question is the natural-language analytic request.
	Question string

	// Tables lists the relevant table names in priority order.
	Tables []string

	// Columns maps each relevant table to its known column names.
	// Generated SQL may only reference names that appear here.
	Columns map[string][]string

	// ForeignKeys maps each table to its declared join edges. Declared
	// edges outrank the naming convention when a join is built.
	ForeignKeys map[string][]schema.ForeignKey

	// MainTable is the designated fact table. Empty means the first
	// entry of Tables.
	MainTable string

	// FromDate and ToDate delimit the optional date range, ISO formatted.
	// Both empty means no date filter.
	FromDate string
	ToDate   string
}

// Main returns the fact table: the explicit main table when set, otherwise
// the first relevant table.
func (qc *QueryContext) Main() string {
	if qc.MainTable != "" {
		return qc.MainTable
	}
	if len(qc.Tables) > 0 {
		return qc.Tables[0]
	}
	return ""
}

// HasDateRange reports whether both ends of the date range are present.
func (qc *QueryContext) HasDateRange() bool {
	return qc.FromDate != "" && qc.ToDate != ""
}

// hasColumn reports whether table is known to have column, case-insensitively.
func (qc *QueryContext) hasColumn(table, column string) bool {
	for _, c := range qc.Columns[table] {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}
