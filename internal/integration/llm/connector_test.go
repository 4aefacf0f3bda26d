package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/llm"
	pkgRetry "github.com/futig/coverletter-backend/internal/pkg/retry"
	"go.uber.org/zap"
)

func testConfig(url string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Token:                 "sk-test",
			Url:                   url,
		},
		CompletionsEndpoint: "/v1/chat/completions",
		Model:               "gpt-4o",
		Retry: pkgRetry.RetryConfig{
			Attempts: 3,
			Delay:    time.Millisecond,
			MaxDelay: 5 * time.Millisecond,
			Timeout:  5 * time.Second,
		},
	}
}

func completion(text string) entity.ChatCompletionResponse {
	return entity.ChatCompletionResponse{
		ID: "cmpl-1",
		Choices: []entity.ChatCompletionChoice{
			{Message: entity.ChatMessage{Role: "assistant", Content: text}, FinishReason: "stop"},
		},
	}
}

func TestGenerateSendsSingleUserMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}

		var req entity.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "gpt-4o" || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Messages[0].Content != "write it" {
			t.Errorf("content = %q", req.Messages[0].Content)
		}

		_ = json.NewEncoder(w).Encode(completion("Dear Hiring Manager"))
	}))
	defer srv.Close()

	c := llm.NewConnector(testConfig(srv.URL), zap.NewNop())

	text, err := c.Generate(context.Background(), "write it")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Dear Hiring Manager" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(completion("ok"))
	}))
	defer srv.Close()

	c := llm.NewConnector(testConfig(srv.URL), zap.NewNop())

	text, err := c.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "ok" || calls.Load() != 3 {
		t.Fatalf("text = %q, calls = %d", text, calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := llm.NewConnector(testConfig(srv.URL), zap.NewNop())

	_, err := c.Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestGenerateRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(entity.ChatCompletionResponse{ID: "x"})
	}))
	defer srv.Close()

	c := llm.NewConnector(testConfig(srv.URL), zap.NewNop())

	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestMockConnectorUsesPromptFields(t *testing.T) {
	m := llm.NewMockConnector(zap.NewNop())

	text, err := m.Generate(context.Background(), "Name: Ada Lovelace\nJob Title: Analyst at Babbage & Co\n")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(text, "Ada Lovelace") || !strings.Contains(text, "Analyst at Babbage & Co") {
		t.Fatalf("mock letter ignores prompt fields: %q", text)
	}
}
