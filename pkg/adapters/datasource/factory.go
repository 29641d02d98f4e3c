package datasource

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AdapterFactory creates adapters from the registry.
type AdapterFactory interface {
	// NewConnectionTester creates a connection tester for the given datasource type.
	NewConnectionTester(ctx context.Context, dsType string, config map[string]any, datasourceID uuid.UUID) (ConnectionTester, error)

	// NewQueryExecutor creates a query executor for the given datasource type.
	NewQueryExecutor(ctx context.Context, dsType string, config map[string]any, datasourceID uuid.UUID) (QueryExecutor, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []AdapterInfo
}

type registryFactory struct {
	connMgr *ConnectionManager
}

// NewAdapterFactory returns a factory that uses the global registry.
func NewAdapterFactory(connMgr *ConnectionManager) AdapterFactory {
	return &registryFactory{
		connMgr: connMgr,
	}
}

func (f *registryFactory) NewConnectionTester(ctx context.Context, dsType string, config map[string]any, datasourceID uuid.UUID) (ConnectionTester, error) {
	factory := GetTesterFactory(dsType)
	if factory == nil {
		return nil, fmt.Errorf("unsupported datasource type: %s (not compiled in)", dsType)
	}
	return factory(ctx, config, f.connMgr, datasourceID)
}

func (f *registryFactory) NewQueryExecutor(ctx context.Context, dsType string, config map[string]any, datasourceID uuid.UUID) (QueryExecutor, error) {
	factory := GetQueryExecutorFactory(dsType)
	if factory == nil {
		return nil, fmt.Errorf("query execution not supported for type: %s", dsType)
	}
	return factory(ctx, config, f.connMgr, datasourceID)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

// Ensure registryFactory implements AdapterFactory at compile time.
var _ AdapterFactory = (*registryFactory)(nil)
