package llm

import (
	"fmt"
	"strings"

	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

const systemPrompt = `You translate analytic questions about trading data into SQL.
Rules:
- Emit exactly one SELECT statement, nothing else. No DDL, no DML, no comments.
- Use only the tables and columns listed in the schema. Never invent names.
- Do not use subqueries or window functions.
- For date ranges use the named placeholders :from_date and :to_date, never literal dates.
- Do not add a semicolon.`

// BuildPrompt serializes a query context into the generation prompt.
func BuildPrompt(qc *sqlgen.QueryContext) (system string, user string) {
	var b strings.Builder

	b.WriteString("Schema:\n")
	for _, table := range qc.Tables {
		fmt.Fprintf(&b, "- %s(%s)\n", table, strings.Join(qc.Columns[table], ", "))
	}
	fmt.Fprintf(&b, "Main fact table: %s\n", qc.Main())

	if qc.HasDateRange() {
		b.WriteString("A date range will be supplied through :from_date and :to_date.\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", qc.Question)

	return systemPrompt, b.String()
}
