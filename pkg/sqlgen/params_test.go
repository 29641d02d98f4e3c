package sqlgen

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two placeholders",
			input:    "SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date",
			expected: []string{"from_date", "to_date"},
		},
		{
			name:     "repeated placeholder deduplicated",
			input:    "WHERE buyer_id = :account_id OR seller_id = :account_id",
			expected: []string{"account_id"},
		},
		{
			name:     "no placeholders",
			input:    "SELECT * FROM trades",
			expected: nil,
		},
		{
			name:     "postgres cast is not a placeholder",
			input:    "SELECT entry_timestamp::date FROM trades WHERE trade_date >= :from_date",
			expected: []string{"from_date"},
		},
		{
			name:     "placeholder inside string literal ignored",
			input:    "SELECT ':from_date' FROM trades WHERE trade_date >= :from_date",
			expected: []string{"from_date"},
		},
		{
			name:     "colon followed by digit is not a placeholder",
			input:    "SELECT '12:30' FROM trades WHERE x = :1x AND trade_date >= :from_date",
			expected: []string{"from_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPlaceholders(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractPlaceholders(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBind(t *testing.T) {
	sqlText := "SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date"
	available := map[string]any{"from_date": "2024-01-01", "to_date": "2024-03-31"}

	bound, err := Bind(sqlText, available)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bound.SQL != "SELECT * FROM trades WHERE trade_date BETWEEN $1 AND $2" {
		t.Errorf("unexpected rewritten SQL: %q", bound.SQL)
	}
	if !reflect.DeepEqual(bound.ParamNames, []string{"from_date", "to_date"}) {
		t.Errorf("unexpected param names: %v", bound.ParamNames)
	}
	if !reflect.DeepEqual(bound.Values, []any{"2024-01-01", "2024-03-31"}) {
		t.Errorf("unexpected values: %v", bound.Values)
	}
	if len(bound.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", bound.Warnings)
	}
}

func TestBind_RepeatedPlaceholderSharesPosition(t *testing.T) {
	bound, err := Bind(
		"SELECT * FROM transfers WHERE sender = :account_id OR receiver = :account_id",
		map[string]any{"account_id": int64(7)},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound.SQL != "SELECT * FROM transfers WHERE sender = $1 OR receiver = $1" {
		t.Errorf("repeated name must reuse position: %q", bound.SQL)
	}
	if len(bound.Values) != 1 {
		t.Errorf("one distinct placeholder, one value, got %v", bound.Values)
	}
}

func TestBind_MissingValueIsMismatch(t *testing.T) {
	_, err := Bind(
		"SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date",
		map[string]any{"from_date": "2024-01-01"},
	)

	var mismatch *BindMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected BindMismatchError, got %v", err)
	}
	if !reflect.DeepEqual(mismatch.Missing, []string{"to_date"}) {
		t.Errorf("expected to_date missing, got %v", mismatch.Missing)
	}
}

func TestBind_UnusedValuesDroppedWithWarning(t *testing.T) {
	bound, err := Bind(
		"SELECT * FROM trades",
		map[string]any{"from_date": "2024-01-01", "to_date": "2024-03-31"},
	)
	if err != nil {
		t.Fatalf("unused parameters must not be an error: %v", err)
	}
	if len(bound.Values) != 0 || len(bound.ParamNames) != 0 {
		t.Errorf("no placeholders, nothing may be bound: %+v", bound)
	}
	if len(bound.Warnings) != 2 {
		t.Errorf("expected one warning per dropped parameter, got %v", bound.Warnings)
	}
}

// Binding is pure: same inputs, same output, every time.
func TestBind_Idempotent(t *testing.T) {
	sqlText := "SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date"
	available := map[string]any{"from_date": "2024-01-01", "to_date": "2024-03-31", "unused": 1}

	first, err := Bind(sqlText, available)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Bind(sqlText, available)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("binding is not idempotent:\n%+v\n%+v", first, second)
	}
}

// The set of placeholders in the text always equals the set bound.
func TestBind_RoundTripPlaceholders(t *testing.T) {
	statements := []string{
		"SELECT * FROM trades WHERE trade_date BETWEEN :from_date AND :to_date",
		"SELECT * FROM trades",
		"SELECT * FROM trades WHERE a = :x AND b = :y AND c = :x",
	}
	available := map[string]any{
		"from_date": "2024-01-01", "to_date": "2024-03-31", "x": 1, "y": 2,
	}

	for _, stmt := range statements {
		inText := ExtractPlaceholders(stmt)
		bound, err := Bind(stmt, available)
		if err != nil {
			t.Fatalf("Bind(%q): %v", stmt, err)
		}
		if !reflect.DeepEqual(inText, bound.ParamNames) {
			t.Errorf("placeholders in text %v != placeholders bound %v", inText, bound.ParamNames)
		}
	}
}
