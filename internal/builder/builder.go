package builder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/futig/coverletter-backend/internal/api"
	artifactapi "github.com/futig/coverletter-backend/internal/api/artifact"
	sessionapi "github.com/futig/coverletter-backend/internal/api/session"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/integration/artifact"
	"github.com/futig/coverletter-backend/internal/integration/callback"
	"github.com/futig/coverletter-backend/internal/integration/llm"
	"github.com/futig/coverletter-backend/internal/pkg/formatter"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	"github.com/futig/coverletter-backend/internal/telegram"
	"github.com/futig/coverletter-backend/internal/tui"
	"github.com/futig/coverletter-backend/internal/usecase/sequencer"
	"github.com/futig/coverletter-backend/internal/usecase/session"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// core holds the components shared by every front-end
type core struct {
	sessionUC *session.SessionUsecase
	artifacts *artifact.Store
	validator *validator.Validator
}

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)

	// Setup API handlers
	sessionHandler := sessionapi.NewHandler(c.sessionUC, c.validator, callbackConnector)
	artifactHandler := artifactapi.NewHandler(c.artifacts)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(sessionHandler, artifactHandler, api.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)
	logger.Info("HTTP router configured")

	// WriteTimeout stays unset: websocket streams outlive a single request.
	// REST routes are bounded by the router timeout middleware.
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, cfg.SessionCfg.TTL, c.sessionUC, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// BuildTUI creates the terminal front-end. Logs go to logPath so they do not
// draw over the screen.
func BuildTUI(ctx context.Context, logPath, outDir string) (*tui.App, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	ctx = ctxzap.ToContext(ctx, logger.With(zap.String("frontend", "tui")))

	c, err := buildCore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if outDir == "" {
		if outDir, err = os.Getwd(); err != nil {
			return nil, nil, fmt.Errorf("resolve output directory: %w", err)
		}
	}

	return tui.NewApp(ctx, c.sessionUC, outDir), logger, nil
}

// buildCore wires generation, rendering, artifact storage and the session use case
func buildCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core, error) {
	// The request template must be able to use every answer and the date
	composer, err := sequencer.NewComposer(cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("compile request template: %w", err)
	}
	if err := composer.Verify(); err != nil {
		return nil, fmt.Errorf("verify request template: %w", err)
	}
	logger.Info("Script loaded", zap.Int("prompt_count", len(cfg.Script.Prompts)))

	generator, err := buildGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	docFormatter, err := formatter.NewFactory(cfg.RenderCfg.FontPath).Create(cfg.RenderCfg.Format)
	if err != nil {
		return nil, fmt.Errorf("create %s formatter: %w", cfg.RenderCfg.Format, err)
	}
	renderer := formatter.NewRenderer(docFormatter)

	artifacts := artifact.NewStore(cfg.RenderCfg.ArtifactTTL)
	v := validator.NewValidator(cfg.SessionCfg.MaxAnswerLength)

	sessionUC := session.NewUsecase(
		cfg.Script,
		generator,
		renderer,
		artifacts,
		v,
		cfg.SessionCfg,
		logger,
	)
	logger.Info("Use cases initialized",
		zap.String("format", string(cfg.RenderCfg.Format)),
		zap.Duration("prompt_delay", cfg.SessionCfg.PromptDelay),
	)

	return &core{
		sessionUC: sessionUC,
		artifacts: artifacts,
		validator: v,
	}, nil
}

func buildGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sequencer.Generator, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock generator")
		return llm.NewMockConnector(logger), nil
	}

	switch cfg.LLMConnectorCfg.Provider {
	case config.LLMProviderArk:
		logger.Info("Using Ark chat model", zap.String("model", cfg.ArkCfg.Model))
		gen, err := llm.NewArkGenerator(ctx, cfg.ArkCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create ark generator: %w", err)
		}
		return gen, nil
	default:
		logger.Info("Using HTTP LLM connector", zap.String("url", cfg.LLMConnectorCfg.Url))
		return llm.NewConnector(cfg.LLMConnectorCfg, logger), nil
	}
}
