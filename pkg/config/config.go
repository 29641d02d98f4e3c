// Package config loads process configuration from config.yaml with
// environment variable overrides. Secrets (datasource password, AI key)
// must only come from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for quantrail-engine.
// Environment variables always override YAML values for fields that support both.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Datasource holds the trading-data store connection settings.
	Datasource DatasourceConfig `yaml:"datasource"`

	// AI holds the candidate producer settings.
	AI AIConfig `yaml:"ai"`

	// Pipeline holds validation and execution limits.
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DatasourceConfig holds the target engine connection settings.
type DatasourceConfig struct {
	// Type selects the adapter: "postgres" or "sqlserver".
	Type     string `yaml:"type" env:"DATASOURCE_TYPE" env-default:"postgres"`
	Host     string `yaml:"host" env:"DATASOURCE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DATASOURCE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DATASOURCE_USER" env-default:"quantrail"`
	Password string `yaml:"-" env:"DATASOURCE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"DATASOURCE_DATABASE" env-default:"marketdata"`
	SSLMode  string `yaml:"ssl_mode" env:"DATASOURCE_SSL_MODE" env-default:"disable"`

	// Connection manager settings.
	ConnectionTTLMinutes int   `yaml:"connection_ttl_minutes" env:"DATASOURCE_CONNECTION_TTL_MINUTES" env-default:"5"`
	PoolMaxConns         int32 `yaml:"pool_max_conns" env:"DATASOURCE_POOL_MAX_CONNS" env-default:"10"`
	PoolMinConns         int32 `yaml:"pool_min_conns" env:"DATASOURCE_POOL_MIN_CONNS" env-default:"1"`
}

// AIConfig holds the candidate producer settings.
type AIConfig struct {
	// Provider selects the client: "openai" (default, covers any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:""`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// PipelineConfig holds per-request limits and fallback tuning.
type PipelineConfig struct {
	// MaxRows caps rows fetched per execution.
	MaxRows int `yaml:"max_rows" env:"PIPELINE_MAX_ROWS" env-default:"100"`

	// TimeoutSeconds is the wall-clock budget for execute-and-fetch.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"PIPELINE_TIMEOUT_SECONDS" env-default:"30"`

	// SchemaPath points at the catalog snapshot file.
	SchemaPath string `yaml:"schema_path" env:"PIPELINE_SCHEMA_PATH" env-default:"schema.yaml"`

	// DateColumnPriorityStr is a comma-separated ranking of likely date
	// column names, highest priority first. Empty uses the built-in default.
	DateColumnPriorityStr string `yaml:"date_column_priority" env:"PIPELINE_DATE_COLUMN_PRIORITY" env-default:""`

	// DateColumnPriority is the parsed list from DateColumnPriorityStr.
	DateColumnPriority []string `yaml:"-"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If config.yaml does not exist, environment variables and
// defaults alone are used.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.parseComplexFields()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() {
	c.Pipeline.DateColumnPriority = parseList(c.Pipeline.DateColumnPriorityStr)
}

func (c *Config) validate() error {
	switch c.Datasource.Type {
	case "postgres", "sqlserver":
	default:
		return fmt.Errorf("unsupported datasource type: %q", c.Datasource.Type)
	}

	if c.Pipeline.MaxRows <= 0 {
		return fmt.Errorf("pipeline.max_rows must be positive")
	}
	if c.Pipeline.TimeoutSeconds <= 0 {
		return fmt.Errorf("pipeline.timeout_seconds must be positive")
	}

	return nil
}

// parseList splits a comma-separated string, trimming whitespace and
// dropping empty entries.
func parseList(value string) []string {
	if value == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// AdapterConfig returns the generic config map consumed by adapter factories.
func (c *DatasourceConfig) AdapterConfig() map[string]any {
	return map[string]any{
		"host":     c.Host,
		"port":     c.Port,
		"user":     c.User,
		"password": c.Password,
		"database": c.Database,
		"ssl_mode": c.SSLMode,
	}
}
