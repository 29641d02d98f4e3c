// Package logging provides the shared zap logger plus sanitizers for
// anything that may carry credentials or raw SQL before it is logged.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process-wide logger. env "local" gets a human-readable
// development logger; everything else gets production JSON output.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
