package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/quantrail/quantrail-engine/pkg/logging"
	"github.com/quantrail/quantrail-engine/pkg/retry"
)

const (
	DefaultConnectionTTLMinutes = 5
	DefaultCleanupInterval      = 1 * time.Minute
	DefaultMaxPools             = 16
	DefaultPoolMaxConns         = 10
	DefaultPoolMinConns         = 1
)

// ConnectionManagerConfig holds configuration for the connection manager
type ConnectionManagerConfig struct {
	TTLMinutes   int
	MaxPools     int
	PoolMaxConns int32
	PoolMinConns int32
}

// ConnectionManager manages pgx connection pools per datasource
// with TTL-based pooling and automatic cleanup.
type ConnectionManager struct {
	mu           sync.RWMutex
	connections  map[string]*ManagedConnection // key: datasourceID
	ttl          time.Duration
	maxPools     int
	poolMaxConns int32
	poolMinConns int32
	stopped      bool
	stopChan     chan struct{}
	logger       *zap.Logger
}

// ManagedConnection represents a pooled connection with its last-use timestamp
type ManagedConnection struct {
	pool     *pgxpool.Pool
	lastUsed time.Time
	mu       sync.Mutex // Per-connection mutex to prevent concurrent access issues
}

// NewConnectionManager creates a connection manager with the given configuration.
// Starts a background cleanup goroutine that runs until Close() is called.
func NewConnectionManager(cfg ConnectionManagerConfig, logger *zap.Logger) *ConnectionManager {
	if cfg.TTLMinutes <= 0 {
		cfg.TTLMinutes = DefaultConnectionTTLMinutes
	}
	if cfg.MaxPools <= 0 {
		cfg.MaxPools = DefaultMaxPools
	}
	if cfg.PoolMaxConns <= 0 {
		cfg.PoolMaxConns = DefaultPoolMaxConns
	}
	if cfg.PoolMinConns <= 0 {
		cfg.PoolMinConns = DefaultPoolMinConns
	}

	manager := &ConnectionManager{
		connections:  make(map[string]*ManagedConnection),
		ttl:          time.Duration(cfg.TTLMinutes) * time.Minute,
		maxPools:     cfg.MaxPools,
		poolMaxConns: cfg.PoolMaxConns,
		poolMinConns: cfg.PoolMinConns,
		stopChan:     make(chan struct{}),
		logger:       logger,
	}

	go manager.cleanupExpiredConnections()
	return manager
}

// GetOrCreatePool gets or creates a connection pool for the given datasource.
// Existing pools are health-checked before reuse; an unhealthy pool is
// recreated transparently.
func (m *ConnectionManager) GetOrCreatePool(
	ctx context.Context,
	datasourceID uuid.UUID,
	connString string,
) (*pgxpool.Pool, error) {
	key := datasourceID.String()

	// Try existing connection with read lock (fast path)
	m.mu.RLock()
	managed, exists := m.connections[key]
	m.mu.RUnlock()

	if exists {
		managed.mu.Lock()

		// Health check with retry and timeout
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := retry.Do(healthCtx, retry.DefaultConfig(), func() error {
			return managed.pool.Ping(healthCtx)
		})

		if err != nil {
			// Unhealthy - log sanitized error, remove, and recreate
			m.logger.Warn("connection unhealthy, recreating",
				zap.String("datasourceID", key),
				zap.String("error", logging.SanitizeError(err)),
			)
			managed.mu.Unlock() // Unlock before calling removeConnection
			m.removeConnection(key)
			return m.createNewPool(ctx, key, connString)
		}

		// Update last used time and return pool
		managed.lastUsed = time.Now()
		managed.mu.Unlock()
		return managed.pool, nil
	}

	return m.createNewPool(ctx, key, connString)
}

// createNewPool creates a new connection pool with retry logic.
// Caller must NOT hold any locks (this method acquires write lock).
func (m *ConnectionManager) createNewPool(
	ctx context.Context,
	key string,
	connString string,
) (*pgxpool.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have created it)
	if managed, exists := m.connections[key]; exists && managed != nil {
		managed.mu.Lock()
		defer managed.mu.Unlock()
		managed.lastUsed = time.Now()
		return managed.pool, nil
	}

	if len(m.connections) >= m.maxPools {
		m.logger.Warn("reached max pools limit",
			zap.Int("current", len(m.connections)),
			zap.Int("max", m.maxPools),
		)
		return nil, fmt.Errorf("reached maximum pools limit (%d)", m.maxPools)
	}

	// Parse and configure the pool with proper settings
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		m.logger.Error("failed to parse connection string",
			zap.String("datasourceID", key),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = m.poolMaxConns
	poolConfig.MinConns = m.poolMinConns
	poolConfig.MaxConnIdleTime = m.ttl

	// Create pool with retry logic for transient failures
	pool, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*pgxpool.Pool, error) {
		return pgxpool.NewWithConfig(ctx, poolConfig)
	})
	if err != nil {
		m.logger.Error("failed to create pool after retries",
			zap.String("datasourceID", key),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, fmt.Errorf("failed to create pool for %s after retries: %w", key, err)
	}

	m.connections[key] = &ManagedConnection{
		pool:     pool,
		lastUsed: time.Now(),
	}

	m.logger.Info("created new connection pool",
		zap.String("datasourceID", key),
		zap.Int("totalPools", len(m.connections)),
	)

	return pool, nil
}

// removeConnection removes a connection from the pool and closes it.
// Caller must NOT hold m.mu lock (this method acquires write lock).
func (m *ConnectionManager) removeConnection(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if managed, exists := m.connections[key]; exists && managed != nil {
		if managed.pool != nil {
			managed.pool.Close()
		}
		delete(m.connections, key)
		m.logger.Debug("removed connection",
			zap.String("datasourceID", key),
		)
	}
}

// cleanupExpiredConnections runs periodically to remove expired connections.
// Runs in a background goroutine until stopChan is closed.
func (m *ConnectionManager) cleanupExpiredConnections() {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performCleanup()
		case <-m.stopChan:
			return
		}
	}
}

// performCleanup removes connections that haven't been used within TTL.
// Lock ordering: manager lock then connection lock.
func (m *ConnectionManager) performCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}

	now := time.Now()
	expiredKeys := []string{}

	for key, managed := range m.connections {
		if managed != nil {
			managed.mu.Lock()
			idleTime := now.Sub(managed.lastUsed)
			expired := idleTime > m.ttl
			managed.mu.Unlock()

			if expired {
				expiredKeys = append(expiredKeys, key)
				m.logger.Debug("marking connection for cleanup",
					zap.String("datasourceID", key),
					zap.Duration("idleTime", idleTime),
					zap.Duration("ttl", m.ttl),
				)
			}
		}
	}

	for _, key := range expiredKeys {
		if managed, exists := m.connections[key]; exists && managed != nil {
			if managed.pool != nil {
				managed.pool.Close()
			}
			delete(m.connections, key)
		}
	}

	if len(expiredKeys) > 0 {
		m.logger.Info("cleaned up expired connections",
			zap.Int("count", len(expiredKeys)),
			zap.Int("remaining", len(m.connections)),
		)
	}
}

// Close closes all connections in the manager and stops the cleanup goroutine.
// This method is idempotent and safe to call multiple times.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil
	}

	m.stopped = true
	close(m.stopChan)

	for _, managed := range m.connections {
		if managed != nil && managed.pool != nil {
			managed.pool.Close()
		}
	}

	m.connections = make(map[string]*ManagedConnection)
	m.logger.Info("connection manager closed")
	return nil
}

// GetStats returns statistics about the connection manager.
// Safe to call concurrently.
func (m *ConnectionManager) GetStats() ConnectionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	stats := ConnectionStats{
		TotalConnections: len(m.connections),
		MaxPools:         m.maxPools,
		TTLMinutes:       int(m.ttl.Minutes()),
	}

	for _, managed := range m.connections {
		if managed != nil {
			managed.mu.Lock()
			idleSeconds := int(now.Sub(managed.lastUsed).Seconds())
			managed.mu.Unlock()
			if idleSeconds > stats.OldestIdleSeconds {
				stats.OldestIdleSeconds = idleSeconds
			}
		}
	}

	return stats
}

// ConnectionStats contains statistics about the connection manager state.
type ConnectionStats struct {
	TotalConnections  int `json:"total_connections"`
	MaxPools          int `json:"max_pools"`
	TTLMinutes        int `json:"ttl_minutes"`
	OldestIdleSeconds int `json:"oldest_idle_seconds"`
}
