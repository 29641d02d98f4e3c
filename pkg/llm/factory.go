package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider names accepted by NewGenerator.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewGenerator creates a producer client for the configured provider.
func NewGenerator(provider string, cfg *Config, logger *zap.Logger) (SQLGenerator, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
