package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quantrail/quantrail-engine/pkg/schema"
)

// DefaultDateColumnPriority is the ranked list of likely date column names.
// The entry-timestamp style names outrank generic ones; deployments override
// the list through configuration when their catalog disagrees.
var DefaultDateColumnPriority = []string{
	"entry_timestamp",
	"trade_timestamp",
	"executed_at",
	"trade_date",
	"created_at",
	"date",
}

// measureColumnPriority ranks columns worth aggregating when the question
// asks for totals.
var measureColumnPriority = []string{
	"total_value",
	"notional",
	"amount",
	"quantity",
	"volume",
	"price",
}

// groupColumnPriority ranks columns worth grouping by.
var groupColumnPriority = []string{
	"symbol_id",
	"instrument_id",
	"ticker",
	"account_id",
}

var aggregateIntent = regexp.MustCompile(`(?i)\b(total|sum|average|avg|count|top|most|highest|largest|biggest)\b`)

// FallbackOptions configures deterministic statement construction.
type FallbackOptions struct {
	// DateColumnPriority overrides DefaultDateColumnPriority when non-empty.
	DateColumnPriority []string
	// RowLimit is the row cap emitted in the limit clause.
	RowLimit int
	// Dialect selects the limit clause syntax.
	Dialect Dialect
}

// Fallback deterministically builds a statement from the query context alone.
// The output always passes Validate: parentheses from aggregate calls are
// balanced by construction, there is exactly one SELECT/FROM pair, no
// subquery, and only table and column names known to the context appear.
// Any date range is expressed through the :from_date/:to_date placeholders.
func Fallback(qc *QueryContext, opts FallbackOptions) string {
	main := qc.Main()
	if main == "" {
		return ""
	}

	if opts.RowLimit <= 0 {
		opts.RowLimit = 100
	}
	priority := opts.DateColumnPriority
	if len(priority) == 0 {
		priority = DefaultDateColumnPriority
	}

	dateCol := firstPresent(qc, main, priority)
	joins := buildJoins(qc, main)
	withJoins := len(joins) > 0

	var b strings.Builder

	groupCol := firstPresent(qc, main, groupColumnPriority)
	measureCol := firstPresent(qc, main, measureColumnPriority)
	aggregated := aggregateIntent.MatchString(qc.Question) && groupCol != "" && measureCol != ""

	orderBy := "1"
	if aggregated {
		alias := "sum_" + strings.ToLower(measureCol)
		fmt.Fprintf(&b, "SELECT %s.%s, SUM(%s.%s) AS %s", main, groupCol, main, measureCol, alias)
		orderBy = alias + " DESC"
	} else if withJoins {
		fmt.Fprintf(&b, "SELECT %s.*", main)
	} else {
		b.WriteString("SELECT *")
	}
	if !aggregated && dateCol != "" {
		orderBy = fmt.Sprintf("%s.%s DESC", main, dateCol)
	}

	fmt.Fprintf(&b, " FROM %s", main)
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}

	if dateCol != "" && qc.HasDateRange() {
		fmt.Fprintf(&b, " WHERE %s.%s BETWEEN :from_date AND :to_date", main, dateCol)
	}

	if aggregated {
		fmt.Fprintf(&b, " GROUP BY %s.%s", main, groupCol)
	}

	fmt.Fprintf(&b, " ORDER BY %s %s", orderBy, opts.Dialect.LimitClause(opts.RowLimit))

	return b.String()
}

// buildJoins emits a LEFT JOIN for each related table with a provable join
// key. A foreign key declared in the catalog wins; without one the
// singularized naming convention applies. Either way both columns must exist,
// and tables without a provable key are left out rather than joined on
// invented names.
func buildJoins(qc *QueryContext, main string) []string {
	var joins []string
	for _, t := range qc.Tables {
		if strings.EqualFold(t, main) {
			continue
		}
		if j := declaredJoin(qc, main, t); j != "" {
			joins = append(joins, j)
			continue
		}
		key := schema.JoinColumn(t)
		if qc.hasColumn(main, key) && qc.hasColumn(t, key) {
			joins = append(joins, fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s", t, main, key, t, key))
		}
	}
	return joins
}

// declaredJoin builds the join clause from a catalog foreign key between main
// and other, in either direction. Returns "" when no usable edge exists.
func declaredJoin(qc *QueryContext, main, other string) string {
	for _, fk := range qc.ForeignKeys[main] {
		if strings.EqualFold(fk.ReferencedTable, other) &&
			qc.hasColumn(main, fk.Column) && qc.hasColumn(other, fk.ReferencedColumn) {
			return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s", other, main, fk.Column, other, fk.ReferencedColumn)
		}
	}
	for _, fk := range qc.ForeignKeys[other] {
		if strings.EqualFold(fk.ReferencedTable, main) &&
			qc.hasColumn(other, fk.Column) && qc.hasColumn(main, fk.ReferencedColumn) {
			return fmt.Sprintf("LEFT JOIN %s ON %s.%s = %s.%s", other, main, fk.ReferencedColumn, other, fk.Column)
		}
	}
	return ""
}

// firstPresent returns the first name from the ranked list that the table is
// known to have, using the catalog's casing.
func firstPresent(qc *QueryContext, table string, ranked []string) string {
	for _, want := range ranked {
		for _, have := range qc.Columns[table] {
			if strings.EqualFold(have, want) {
				return have
			}
		}
	}
	return ""
}
