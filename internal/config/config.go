package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/coverletter-backend/internal/entity"
	pkgRetry "github.com/futig/coverletter-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	LLMProviderHTTP = "http"
	LLMProviderArk  = "ark"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	ArkCfg               ArkConfig               `envPrefix:"ARK_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Conversation configuration
	SessionCfg SessionConfig `envPrefix:"SESSION_"`
	RenderCfg  RenderConfig  `envPrefix:"RENDER_"`

	// Script file, falls back to the built-in script when missing
	ScriptPath    string `env:"SCRIPT_PATH" envDefault:"internal/config/script.yaml"`
	FailureNotice string `env:"FAILURE_NOTICE"`

	// Script loaded from ScriptPath
	Script *entity.Script `env:"-"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string `env:"-"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Provider            string               `env:"PROVIDER" envDefault:"http"`
	CompletionsEndpoint string               `env:"COMPLETIONS_ENDPOINT" envDefault:"/v1/chat/completions"`
	Model               string               `env:"MODEL" envDefault:"gpt-4o"`
	Temperature         float64              `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens           int                  `env:"MAX_TOKENS" envDefault:"1024"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ArkConfig configures the Volcengine Ark chat model
type ArkConfig struct {
	BaseURL   string  `env:"BASE_URL"`
	Region    string  `env:"REGION"`
	APIKey    string  `env:"API_KEY"`
	AccessKey string  `env:"ACCESS_KEY"`
	SecretKey string  `env:"SECRET_KEY"`
	Model     string  `env:"MODEL"`
	MaxTokens int     `env:"MAX_TOKENS" envDefault:"1024"`
	TopP      float32 `env:"TOP_P" envDefault:"0.9"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"30s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	MaxIdleConns          int           `env:"MAX_IDLE_CONNS" envDefault:"50"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"10"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// SessionConfig holds conversation limits
type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"2h"`
	PromptDelay     time.Duration `env:"PROMPT_DELAY" envDefault:"500ms"`
	MaxAnswerLength int           `env:"MAX_ANSWER_LENGTH" envDefault:"4000"`
}

// RenderConfig selects the document format and how long artifacts stay downloadable
type RenderConfig struct {
	Format      entity.ResultFormat `env:"FORMAT" envDefault:"pdf"`
	ArtifactTTL time.Duration       `env:"ARTIFACT_TTL" envDefault:"1h"`
	FontPath    string              `env:"FONT_PATH"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	return Load(*envFlag)
}

// Load parses the process environment and the script file
func Load(environment string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	script, err := LoadScript(cfg.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	if cfg.FailureNotice != "" {
		script.FailureNotice = cfg.FailureNotice
	}
	cfg.Script = script

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if !cfg.RenderCfg.Format.IsValid() {
		errors = append(errors, fmt.Sprintf("RENDER_FORMAT must be one of pdf, docx, markdown, got %q", cfg.RenderCfg.Format))
	}

	if cfg.SessionCfg.PromptDelay < 0 || cfg.SessionCfg.PromptDelay > 10*time.Second {
		errors = append(errors, fmt.Sprintf("SESSION_PROMPT_DELAY must be between 0 and 10s, got %s", cfg.SessionCfg.PromptDelay))
	}

	if cfg.SessionCfg.TTL < time.Minute {
		errors = append(errors, fmt.Sprintf("SESSION_TTL must be at least 1m, got %s", cfg.SessionCfg.TTL))
	}

	if cfg.RenderCfg.ArtifactTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("RENDER_ARTIFACT_TTL must be at least 1m, got %s", cfg.RenderCfg.ArtifactTTL))
	}

	if cfg.SessionCfg.MaxAnswerLength < 1 || cfg.SessionCfg.MaxAnswerLength > 100000 {
		errors = append(errors, fmt.Sprintf("SESSION_MAX_ANSWER_LENGTH must be between 1 and 100000, got %d", cfg.SessionCfg.MaxAnswerLength))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if !cfg.EnableMocks {
		switch cfg.LLMConnectorCfg.Provider {
		case LLMProviderHTTP:
			if cfg.LLMConnectorCfg.Url == "" {
				errors = append(errors, "LLM_SERVICE_URL is required for the http provider")
			}
		case LLMProviderArk:
			if cfg.ArkCfg.Model == "" {
				errors = append(errors, "ARK_MODEL is required for the ark provider")
			}
			if cfg.ArkCfg.APIKey == "" && (cfg.ArkCfg.AccessKey == "" || cfg.ArkCfg.SecretKey == "") {
				errors = append(errors, "ARK_API_KEY or ARK_ACCESS_KEY with ARK_SECRET_KEY is required for the ark provider")
			}
		default:
			errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be http or ark, got %q", cfg.LLMConnectorCfg.Provider))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
