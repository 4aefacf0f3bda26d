package llm

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a canned letter without calling any service
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating letter via LLM", zap.Int("prompt_length", len(prompt)))

	name := fieldFromPrompt(prompt, "Name:")
	if name == "" {
		name = "the applicant"
	}
	job := fieldFromPrompt(prompt, "Job Title:")
	if job == "" {
		job = "this position"
	}

	var sb strings.Builder
	sb.WriteString("Dear Hiring Manager,\n\n")
	sb.WriteString("I am writing to express my interest in " + job + ". ")
	sb.WriteString("My background and experience make me a strong candidate, and I would welcome the opportunity to contribute to your team.\n\n")
	sb.WriteString("Thank you for your time and consideration. I look forward to hearing from you.\n\n")
	sb.WriteString("Best regards,\n" + name + "\n\n(MOCK)")

	letter := sb.String()
	ctxzap.Info(ctx, "[MOCK] letter generated", zap.Int("result_length", len(letter)))
	return letter, nil
}

func fieldFromPrompt(prompt, label string) string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}
