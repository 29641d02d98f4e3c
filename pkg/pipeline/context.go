package pipeline

import (
	"github.com/quantrail/quantrail-engine/pkg/schema"
	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// BuildQueryContext assembles the per-request query context from the cached
// catalog snapshot and the caller's request. The snapshot is read-only; the
// returned context is owned by the request and discarded after execution.
func BuildQueryContext(snap *schema.Snapshot, req *Request) *sqlgen.QueryContext {
	tables := snap.TableNames()
	columns := make(map[string][]string, len(tables))
	foreignKeys := make(map[string][]schema.ForeignKey)
	for _, name := range tables {
		if t, ok := snap.Table(name); ok {
			columns[name] = t.ColumnNames()
			if len(t.ForeignKeys) > 0 {
				foreignKeys[name] = t.ForeignKeys
			}
		}
	}

	return &sqlgen.QueryContext{
		Question:    req.Question,
		Tables:      tables,
		Columns:     columns,
		ForeignKeys: foreignKeys,
		MainTable:   snap.MainTable,
		FromDate:    req.FromDate,
		ToDate:      req.ToDate,
	}
}
