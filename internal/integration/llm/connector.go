package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/common"
	pkghttp "github.com/futig/coverletter-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI-compatible chat completions endpoint
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Generate sends the prompt as a single user message and returns the first choice
func (c *Connector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "generating letter via LLM service", zap.String("model", c.config.Model))

	req := &entity.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []entity.ChatMessage{
			{Role: "user", Content: prompt},
		},
	}
	if c.config.Temperature > 0 {
		temperature := c.config.Temperature
		req.Temperature = &temperature
	}
	if c.config.MaxTokens > 0 {
		maxTokens := c.config.MaxTokens
		req.MaxTokens = &maxTokens
	}

	retryCtx, cancel := c.config.Retry.WithTimeout(ctx)
	defer cancel()

	opts := append(c.config.Retry.ToRetryOptions(retryCtx),
		retry.RetryIf(common.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "LLM request failed, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)

	resp, err := retry.DoWithData(func() (*entity.ChatCompletionResponse, error) {
		var rawResp entity.ChatCompletionResponse
		if err := c.connector.DoRequest(retryCtx, http.MethodPost, c.config.CompletionsEndpoint, req, &rawResp); err != nil {
			return nil, err
		}
		return &rawResp, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("invalid completion response: no choices")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("invalid completion response: empty content")
	}

	ctxzap.Info(ctx, "letter generated successfully",
		zap.Int("result_length", len(text)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)

	return text, nil
}
