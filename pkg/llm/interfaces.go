// Package llm hosts the candidate producer: clients that ask a model for
// SQL text. Whatever comes back is treated as adversarial input and goes
// through sanitization and structural validation before anything else
// happens with it.
package llm

import (
	"context"

	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// SQLGenerator produces raw candidate SQL for a query context.
// Implementations must return the model's text untouched; cleanup is the
// caller's job.
type SQLGenerator interface {
	// GenerateSQL returns raw candidate SQL text for the context.
	GenerateSQL(ctx context.Context, qc *sqlgen.QueryContext) (string, error)

	// Model returns the configured model name, for logging.
	Model() string
}
