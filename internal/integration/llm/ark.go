package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ArkGenerator generates letters with a Volcengine Ark chat model
type ArkGenerator struct {
	model  chatModel
	logger *zap.Logger
}

func NewArkGenerator(ctx context.Context, cfg config.ArkConfig, logger *zap.Logger) (*ArkGenerator, error) {
	var maxTokens *int
	if cfg.MaxTokens > 0 {
		val := cfg.MaxTokens
		maxTokens = &val
	}

	var topP *float32
	if cfg.TopP > 0 {
		val := cfg.TopP
		topP = &val
	}

	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		Region:    cfg.Region,
		APIKey:    cfg.APIKey,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Model:     cfg.Model,
		MaxTokens: maxTokens,
		TopP:      topP,
	})
	if err != nil {
		return nil, fmt.Errorf("create ark chat model: %w", err)
	}

	return newArkGenerator(cm, logger), nil
}

func newArkGenerator(cm chatModel, logger *zap.Logger) *ArkGenerator {
	return &ArkGenerator{model: cm, logger: logger}
}

func (g *ArkGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "generating letter via ark chat model")

	resp, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("ark generation failed: %w", err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("invalid ark response: empty content")
	}

	ctxzap.Info(ctx, "letter generated successfully", zap.Int("result_length", len(resp.Content)))

	return resp.Content, nil
}
