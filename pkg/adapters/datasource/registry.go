package datasource

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// AdapterInfo describes a registered adapter.
type AdapterInfo struct {
	Type        string `json:"type"`         // "postgres", "sqlserver"
	DisplayName string `json:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string `json:"description"`
}

// AdapterRegistration contains info + factories for creating adapters.
// Factory functions accept the connection manager and datasource identity
// so pooled connections can be shared and keyed.
type AdapterRegistration struct {
	Info                 AdapterInfo
	TesterFactory        func(ctx context.Context, config map[string]any, connMgr *ConnectionManager, datasourceID uuid.UUID) (ConnectionTester, error)
	QueryExecutorFactory func(ctx context.Context, config map[string]any, connMgr *ConnectionManager, datasourceID uuid.UUID) (QueryExecutor, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterRegistration)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	return result
}

// GetTesterFactory returns the connection tester factory for a datasource type.
// Returns nil if type is not registered.
func GetTesterFactory(dsType string) func(ctx context.Context, config map[string]any, connMgr *ConnectionManager, datasourceID uuid.UUID) (ConnectionTester, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.TesterFactory
	}
	return nil
}

// GetQueryExecutorFactory returns the query executor factory for a datasource type.
// Returns nil if type is not registered.
func GetQueryExecutorFactory(dsType string) func(ctx context.Context, config map[string]any, connMgr *ConnectionManager, datasourceID uuid.UUID) (QueryExecutor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if reg, ok := registry[dsType]; ok {
		return reg.QueryExecutorFactory
	}
	return nil
}

// IsRegistered checks if an adapter type is available.
func IsRegistered(dsType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dsType]
	return ok
}
