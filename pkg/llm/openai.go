package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/quantrail/quantrail-engine/pkg/sqlgen"
)

// Config holds connection settings for a producer client.
type Config struct {
	Endpoint string // base URL, e.g. "https://api.openai.com/v1"
	Model    string // model name
	APIKey   string // optional for local endpoints
}

// OpenAIClient generates candidate SQL through an OpenAI-compatible
// chat-completion endpoint.
type OpenAIClient struct {
	client   *openai.Client
	endpoint string
	model    string
	logger   *zap.Logger
}

// NewOpenAIClient creates an OpenAI-compatible producer client.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(clientConfig),
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		logger:   logger.Named("llm"),
	}, nil
}

// GenerateSQL asks the model for candidate SQL. Temperature is pinned to
// zero; the pipeline depends on generation being as repeatable as the
// endpoint allows.
func (c *OpenAIClient) GenerateSQL(ctx context.Context, qc *sqlgen.QueryContext) (string, error) {
	system, user := BuildPrompt(qc)

	c.logger.Debug("producer request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(user)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	if err != nil {
		c.logger.Error("producer request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeEmpty, "no choices in response", false, nil)
	}

	content := resp.Choices[0].Message.Content

	c.logger.Info("producer request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return content, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Ensure OpenAIClient implements SQLGenerator at compile time.
var _ SQLGenerator = (*OpenAIClient)(nil)
