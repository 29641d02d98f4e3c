package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotYAML = `
main_table: trades
tables:
  - name: trades
    columns:
      - name: trade_id
        data_type: bigint
      - name: symbol_id
        data_type: bigint
      - name: entry_timestamp
        data_type: timestamp
      - name: quantity
        data_type: numeric
      - name: total_value
        data_type: numeric
    foreign_keys:
      - column: symbol_id
        referenced_table: symbols
        referenced_column: symbol_id
  - name: symbols
    columns:
      - name: symbol_id
        data_type: bigint
      - name: ticker
        data_type: varchar
`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	snap, err := Load(writeSnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, "trades", snap.MainTable)
	assert.Equal(t, []string{"trades", "symbols"}, snap.TableNames())

	trades, ok := snap.Table("trades")
	require.True(t, ok)
	assert.Len(t, trades.Columns, 5)
	assert.Len(t, trades.ForeignKeys, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/schema.yaml")
	assert.Error(t, err)
}

func TestNewSnapshot_Validation(t *testing.T) {
	_, err := NewSnapshot(nil, "")
	assert.Error(t, err, "empty snapshot must be rejected")

	_, err = NewSnapshot([]Table{{Name: "trades"}}, "positions")
	assert.Error(t, err, "main table must exist in snapshot")
}

func TestNewSnapshot_DefaultsMainTable(t *testing.T) {
	snap, err := NewSnapshot([]Table{{Name: "trades"}, {Name: "symbols"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "trades", snap.MainTable)
}

func TestTable_CaseInsensitiveLookup(t *testing.T) {
	snap, err := Load(writeSnapshot(t))
	require.NoError(t, err)

	tbl, ok := snap.Table("TRADES")
	require.True(t, ok)
	assert.Equal(t, "trades", tbl.Name)

	assert.True(t, tbl.HasColumn("SYMBOL_ID"))
	assert.False(t, tbl.HasColumn("nonexistent"))
}

func TestJoinColumn(t *testing.T) {
	tests := []struct {
		table    string
		expected string
	}{
		{"symbols", "symbol_id"},
		{"trades", "trade_id"},
		{"accounts", "account_id"},
		{"currencies", "currency_id"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinColumn(tt.table))
		})
	}
}
