package sqlgen

import (
	"strings"
	"testing"
)

func TestValidate_Accepted(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple select", "SELECT * FROM trades"},
		{"lowercase keywords", "select quantity from trades"},
		{"with where and placeholders", "SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date"},
		{"aggregate with balanced parens", "SELECT symbol_id, SUM(total_value) AS sum_total_value FROM trades GROUP BY symbol_id"},
		{"join", "SELECT trades.* FROM trades LEFT JOIN symbols ON trades.symbol_id = symbols.symbol_id"},
		{"parens inside string literal", "SELECT * FROM symbols WHERE ticker = '(((('"},
		{"semicolon inside string literal", "SELECT * FROM symbols WHERE ticker = 'a;b'"},
		{"select keyword inside string literal after paren", "SELECT * FROM notes WHERE body = '(select me)'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if !result.Verdict.OK() {
				t.Errorf("expected accept, got %s (%s)", result.Verdict, result.Reason)
			}
		})
	}
}

func TestValidate_RejectedMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"missing closing paren", "SELECT SUM(total_value FROM trades"},
		{"extra closing paren", "SELECT quantity) FROM trades"},
		{"closing before opening", ") SELECT * FROM trades ("},
		{"missing select", "FROM trades"},
		{"missing from", "SELECT 1"},
		{"select as substring only", "SELECTED * FROM trades"},
		{"from as substring only", "SELECT from_date"},
		{"multiple statements", "SELECT * FROM trades; DROP TABLE trades"},
		{"truncated producer output", "SELECT SYMBOL_ID AS instrument, SUM(total_value) FROM trades JOIN (SELECT SYMBOL_ID, ROW_NUMBER() OVER (PARTITION BY SYMBOL_ID ORDER BY total_value DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.Verdict != VerdictRejectedMalformed {
				t.Errorf("expected rejected_malformed, got %s (%s)", result.Verdict, result.Reason)
			}
			if result.Reason == "" {
				t.Error("rejection must carry a reason")
			}
		})
	}
}

func TestValidate_RejectedUnsupportedConstruct(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"subquery in from", "SELECT * FROM (SELECT * FROM trades) t"},
		{"subquery in where", "SELECT * FROM trades WHERE symbol_id IN (SELECT symbol_id FROM symbols)"},
		{"subquery with whitespace after paren", "SELECT * FROM (  select * from trades) t"},
		{"lowercase subquery", "select * from trades where symbol_id in (select symbol_id from symbols)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.Verdict != VerdictRejectedUnsupportedConstruct {
				t.Errorf("expected rejected_unsupported_construct, got %s (%s)", result.Verdict, result.Reason)
			}
		})
	}
}

// Any unbalanced parenthesis count must reject, no matter what surrounds it.
func TestValidate_UnbalancedAlwaysRejects(t *testing.T) {
	bases := []string{
		"SELECT * FROM trades",
		"SELECT a, b FROM trades WHERE quantity > 0",
	}
	for _, base := range bases {
		for _, extra := range []string{"(", ")", "((", "))", "(()"} {
			input := base + " " + extra
			result := Validate(input)
			if result.Verdict != VerdictRejectedMalformed {
				t.Errorf("Validate(%q) = %s, expected rejected_malformed", input, result.Verdict)
			}
		}
	}
}

func TestMaskStringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single quoted literal masked",
			input:    "WHERE ticker = 'AAPL'",
			expected: "WHERE ticker = '____'",
		},
		{
			name:     "double quoted identifier masked",
			input:    `FROM "my table"`,
			expected: `FROM "________"`,
		},
		{
			name:     "escaped quote stays in literal",
			input:    "WHERE name = 'O''Brien'",
			expected: "WHERE name = '________'",
		},
		{
			name:     "parens in literal masked",
			input:    "WHERE t = '(x)'",
			expected: "WHERE t = '___'",
		},
		{
			name:     "no literals",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maskStringLiterals(tt.input)
			if got != tt.expected {
				t.Errorf("maskStringLiterals(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if len(got) != len(tt.input) {
				t.Errorf("masking must preserve length: %d != %d", len(got), len(tt.input))
			}
		})
	}
}

func TestVerdict_String(t *testing.T) {
	if !strings.Contains(VerdictRejectedMalformed.String(), "malformed") {
		t.Error("verdict string should name the class")
	}
	if Verdict(99).String() != "unknown" {
		t.Error("out-of-range verdict should be unknown")
	}
}
