package sqlgen

import (
	"strings"
	"testing"

	"github.com/quantrail/quantrail-engine/pkg/schema"
)

func tradingContext() *QueryContext {
	return &QueryContext{
		Question: "show me recent trades",
		Tables:   []string{"trades", "symbols"},
		Columns: map[string][]string{
			"trades":  {"trade_id", "symbol_id", "entry_timestamp", "quantity", "total_value"},
			"symbols": {"symbol_id", "ticker", "exchange"},
		},
		MainTable: "trades",
		FromDate:  "2024-01-01",
		ToDate:    "2024-03-31",
	}
}

func TestFallback_Shape(t *testing.T) {
	got := Fallback(tradingContext(), FallbackOptions{RowLimit: 100, Dialect: DialectPostgres})

	for _, want := range []string{
		"FROM trades",
		"LEFT JOIN symbols ON trades.symbol_id = symbols.symbol_id",
		"WHERE trades.entry_timestamp BETWEEN :from_date AND :to_date",
		"FETCH FIRST 100 ROWS ONLY",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback missing %q:\n%s", want, got)
		}
	}
}

func TestFallback_AggregationIntent(t *testing.T) {
	qc := tradingContext()
	qc.Question = "total traded value per symbol over the quarter"

	got := Fallback(qc, FallbackOptions{RowLimit: 50, Dialect: DialectPostgres})

	for _, want := range []string{
		"SUM(trades.total_value) AS sum_total_value",
		"GROUP BY trades.symbol_id",
		"ORDER BY sum_total_value DESC",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("aggregated fallback missing %q:\n%s", want, got)
		}
	}
}

func TestFallback_DateColumnPriority(t *testing.T) {
	qc := tradingContext()
	// both a generic and an entry-timestamp style name present; the ranked
	// list decides, not catalog order
	qc.Columns["trades"] = []string{"trade_id", "date", "entry_timestamp"}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if !strings.Contains(got, "trades.entry_timestamp BETWEEN") {
		t.Errorf("expected entry_timestamp to outrank date:\n%s", got)
	}

	// a custom priority list flips the choice
	got = Fallback(qc, FallbackOptions{
		DateColumnPriority: []string{"date"},
		RowLimit:           10,
		Dialect:            DialectPostgres,
	})
	if !strings.Contains(got, "trades.date BETWEEN") {
		t.Errorf("expected configured priority to win:\n%s", got)
	}
}

func TestFallback_NoDateColumn(t *testing.T) {
	qc := &QueryContext{
		Question:  "list symbols",
		Tables:    []string{"symbols"},
		Columns:   map[string][]string{"symbols": {"symbol_id", "ticker"}},
		MainTable: "symbols",
		FromDate:  "2024-01-01",
		ToDate:    "2024-03-31",
	}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if strings.Contains(got, "WHERE") {
		t.Errorf("no known date column, no date filter expected:\n%s", got)
	}
	if strings.Contains(got, ":from_date") {
		t.Errorf("no placeholders expected without a date filter:\n%s", got)
	}
}

func TestFallback_NoDateRange(t *testing.T) {
	qc := tradingContext()
	qc.FromDate = ""
	qc.ToDate = ""

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if strings.Contains(got, "WHERE") {
		t.Errorf("no requested range, no date filter expected:\n%s", got)
	}
}

func TestFallback_DeclaredForeignKeyOutranksConvention(t *testing.T) {
	// The catalog declares an edge whose column names do not follow the
	// singularized convention; the declared edge must be used.
	qc := &QueryContext{
		Question:  "recent trades with their instruments",
		Tables:    []string{"trades", "instruments"},
		MainTable: "trades",
		Columns: map[string][]string{
			"trades":      {"trade_id", "instrument_ref", "executed_at", "quantity"},
			"instruments": {"id", "ticker"},
		},
		ForeignKeys: map[string][]schema.ForeignKey{
			"trades": {{Column: "instrument_ref", ReferencedTable: "instruments", ReferencedColumn: "id"}},
		},
	}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if !strings.Contains(got, "LEFT JOIN instruments ON trades.instrument_ref = instruments.id") {
		t.Errorf("expected join from declared foreign key:\n%s", got)
	}
}

func TestFallback_ForeignKeyReverseDirection(t *testing.T) {
	// The edge is declared on the related table pointing at the main table.
	qc := &QueryContext{
		Question:  "fills and their parent orders",
		Tables:    []string{"orders", "fills"},
		MainTable: "orders",
		Columns: map[string][]string{
			"orders": {"order_id", "created_at", "side"},
			"fills":  {"fill_id", "parent_order", "quantity"},
		},
		ForeignKeys: map[string][]schema.ForeignKey{
			"fills": {{Column: "parent_order", ReferencedTable: "orders", ReferencedColumn: "order_id"}},
		},
	}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if !strings.Contains(got, "LEFT JOIN fills ON orders.order_id = fills.parent_order") {
		t.Errorf("expected join from reversed foreign key:\n%s", got)
	}
}

func TestFallback_ForeignKeyWithMissingColumnIgnored(t *testing.T) {
	// A declared edge naming a column absent from the catalog must not be
	// trusted; the convention still applies when its columns exist.
	qc := tradingContext()
	qc.ForeignKeys = map[string][]schema.ForeignKey{
		"trades": {{Column: "sym_ref", ReferencedTable: "symbols", ReferencedColumn: "id"}},
	}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if !strings.Contains(got, "LEFT JOIN symbols ON trades.symbol_id = symbols.symbol_id") {
		t.Errorf("expected convention join when the declared edge is unprovable:\n%s", got)
	}
}

func TestFallback_NoProvableJoinKey(t *testing.T) {
	qc := tradingContext()
	// symbols loses its key column, so the join cannot be proven
	qc.Columns["symbols"] = []string{"ticker", "exchange"}

	got := Fallback(qc, FallbackOptions{RowLimit: 10, Dialect: DialectPostgres})
	if strings.Contains(got, "JOIN") {
		t.Errorf("join must not be emitted without a provable key:\n%s", got)
	}
}

func TestFallback_SQLServerLimitClause(t *testing.T) {
	got := Fallback(tradingContext(), FallbackOptions{RowLimit: 25, Dialect: DialectSQLServer})
	if !strings.Contains(got, "OFFSET 0 ROWS FETCH FIRST 25 ROWS ONLY") {
		t.Errorf("expected SQL Server fetch clause:\n%s", got)
	}
	if !strings.Contains(got, "ORDER BY") {
		t.Errorf("SQL Server fetch clause requires ORDER BY:\n%s", got)
	}
}

func TestFallback_EmptyContext(t *testing.T) {
	if got := Fallback(&QueryContext{}, FallbackOptions{}); got != "" {
		t.Errorf("no tables, no statement, got %q", got)
	}
}

// For any context, the fallback must pass the validator. This is the
// guarantee the whole recovery path rests on.
func TestFallback_AlwaysPassesValidation(t *testing.T) {
	contexts := []*QueryContext{
		tradingContext(),
		{
			Question:  "total volume per instrument",
			Tables:    []string{"executions", "instruments", "venues"},
			MainTable: "executions",
			Columns: map[string][]string{
				"executions":  {"execution_id", "instrument_id", "venue_id", "executed_at", "volume", "price"},
				"instruments": {"instrument_id", "ticker"},
				"venues":      {"venue_id", "name"},
			},
			FromDate: "2023-06-01",
			ToDate:   "2023-06-30",
		},
		{
			Question: "anything",
			Tables:   []string{"positions"},
			Columns:  map[string][]string{"positions": {"position_id"}},
		},
		{
			Question:  "count of fills",
			Tables:    []string{"fills", "orders"},
			MainTable: "fills",
			Columns: map[string][]string{
				"fills":  {"fill_id", "order_id", "created_at", "quantity", "account_id"},
				"orders": {"order_id", "side"},
			},
		},
	}

	for _, dialect := range []Dialect{DialectPostgres, DialectSQLServer} {
		for i, qc := range contexts {
			got := Fallback(qc, FallbackOptions{RowLimit: 100, Dialect: dialect})
			if got == "" {
				t.Fatalf("context %d produced empty fallback", i)
			}
			result := Validate(got)
			if !result.Verdict.OK() {
				t.Errorf("context %d (%s): fallback failed validation (%s):\n%s", i, dialect, result.Reason, got)
			}
			if strings.Count(strings.ToUpper(got), "SELECT") != 1 {
				t.Errorf("context %d: fallback must contain exactly one SELECT:\n%s", i, got)
			}
		}
	}
}
