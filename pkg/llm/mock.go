package llm

import (
	"context"

	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// MockGenerator is a configurable SQLGenerator for tests.
type MockGenerator struct {
	// GenerateSQLFunc is called when GenerateSQL is invoked.
	// If nil, an empty string and nil error are returned.
	GenerateSQLFunc func(ctx context.Context, qc *sqlgen.QueryContext) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// GenerateSQLCalls counts invocations for verification.
	GenerateSQLCalls int
}

// GenerateSQL implements SQLGenerator.
func (m *MockGenerator) GenerateSQL(ctx context.Context, qc *sqlgen.QueryContext) (string, error) {
	m.GenerateSQLCalls++
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, qc)
	}
	return "", nil
}

// Model implements SQLGenerator.
func (m *MockGenerator) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Ensure MockGenerator implements SQLGenerator at compile time.
var _ SQLGenerator = (*MockGenerator)(nil)
