package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("SCRIPT_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ServerAddr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %q %q", cfg.ServerAddr, cfg.LogLevel)
	}
	if cfg.SessionCfg.PromptDelay != 500*time.Millisecond {
		t.Fatalf("prompt delay = %s", cfg.SessionCfg.PromptDelay)
	}
	if cfg.RenderCfg.Format != entity.FormatPDF {
		t.Fatalf("render format = %s", cfg.RenderCfg.Format)
	}
	if cfg.LLMConnectorCfg.CompletionsEndpoint != "/v1/chat/completions" || cfg.LLMConnectorCfg.Model != "gpt-4o" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLMConnectorCfg)
	}
	if cfg.LLMConnectorCfg.Retry.Attempts != 3 {
		t.Fatalf("retry attempts = %d", cfg.LLMConnectorCfg.Retry.Attempts)
	}
	if len(cfg.Script.Prompts) != 10 {
		t.Fatalf("expected default script with 10 prompts, got %d", len(cfg.Script.Prompts))
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
}

func TestLoadRequiresServiceURL(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "false")
	t.Setenv("LLM_PROVIDER", "http")
	t.Setenv("LLM_SERVICE_URL", "")

	_, err := config.Load("test")
	if err == nil || !strings.Contains(err.Error(), "LLM_SERVICE_URL") {
		t.Fatalf("expected LLM_SERVICE_URL error, got %v", err)
	}
}

func TestLoadReportsAllErrors(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("RENDER_FORMAT", "odt")
	t.Setenv("SESSION_PROMPT_DELAY", "1m")

	_, err := config.Load("test")
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, part := range []string{"RENDER_FORMAT", "SESSION_PROMPT_DELAY"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("error %q does not mention %s", err, part)
		}
	}
}

func TestFailureNoticeOverride(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("SCRIPT_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("FAILURE_NOTICE", "try later")

	cfg, err := config.Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Script.FailureNotice != "try later" {
		t.Fatalf("failure notice = %q", cfg.Script.FailureNotice)
	}
}

func TestShippedScriptMatchesDefault(t *testing.T) {
	script, err := config.LoadScript("script.yaml")
	if err != nil {
		t.Fatalf("load script: %v", err)
	}

	def := config.DefaultScript()
	if !reflect.DeepEqual(script.Prompts, def.Prompts) {
		t.Fatalf("prompts differ from default:\n%v\n%v", script.Prompts, def.Prompts)
	}
	if strings.TrimSpace(script.RequestTemplate) != strings.TrimSpace(def.RequestTemplate) {
		t.Fatal("request template differs from default")
	}
	if script.Document != def.Document || script.Announcement != def.Announcement {
		t.Fatalf("document settings differ: %+v", script.Document)
	}
}

func TestLoadScriptRejectsDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	body := `prompts:
  - key: name
    text: Name?
  - key: name
    text: Again?
request_template: "{{.Answers.name}} {{.Date}}"
announcement: "Here:"
document:
  name_key: name
  email_key: name
  phone_key: name
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	if _, err := config.LoadScript(path); err == nil {
		t.Fatal("expected duplicate key error")
	}
}
