package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantrail/quantrail-engine/pkg/adapters/datasource"
	_ "github.com/quantrail/quantrail-engine/pkg/adapters/datasource/mssql"
	_ "github.com/quantrail/quantrail-engine/pkg/adapters/datasource/postgres"
	"github.com/quantrail/quantrail-engine/pkg/config"
	"github.com/quantrail/quantrail-engine/pkg/handlers"
	"github.com/quantrail/quantrail-engine/pkg/llm"
	"github.com/quantrail/quantrail-engine/pkg/logging"
	"github.com/quantrail/quantrail-engine/pkg/pipeline"
	"github.com/quantrail/quantrail-engine/pkg/schema"
	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	snapshot, err := schema.Load(cfg.Pipeline.SchemaPath)
	if err != nil {
		logger.Fatal("Failed to load schema snapshot",
			zap.String("path", cfg.Pipeline.SchemaPath),
			zap.Error(err),
		)
	}

	generator, err := llm.NewGenerator(cfg.AI.Provider, &llm.Config{
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create SQL generator", zap.Error(err))
	}

	connMgr := datasource.NewConnectionManager(datasource.ConnectionManagerConfig{
		TTLMinutes:   cfg.Datasource.ConnectionTTLMinutes,
		PoolMaxConns: cfg.Datasource.PoolMaxConns,
		PoolMinConns: cfg.Datasource.PoolMinConns,
	}, logger)
	defer func() { _ = connMgr.Close() }()

	factory := datasource.NewAdapterFactory(connMgr)
	executor, err := factory.NewQueryExecutor(
		context.Background(),
		cfg.Datasource.Type,
		cfg.Datasource.AdapterConfig(),
		uuid.New(),
	)
	if err != nil {
		logger.Fatal("Failed to create query executor",
			zap.String("type", cfg.Datasource.Type),
			zap.Error(err),
		)
	}
	defer func() { _ = executor.Close() }()

	dialect := sqlgen.Dialect(cfg.Datasource.Type)
	pipe := pipeline.New(generator, executor, snapshot, pipeline.Options{
		MaxRows:            cfg.Pipeline.MaxRows,
		Timeout:            time.Duration(cfg.Pipeline.TimeoutSeconds) * time.Second,
		Dialect:            dialect,
		DateColumnPriority: cfg.Pipeline.DateColumnPriority,
	}, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(pipe, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting quantrail-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("datasource", cfg.Datasource.Type),
		zap.String("mainTable", snapshot.MainTable),
	)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
