package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/telegram/bot"
	"github.com/futig/coverletter-backend/internal/telegram/handlers"
	"github.com/futig/coverletter-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies. Chat to session
// mappings live as long as the sessions themselves.
func NewBot(
	cfg *config.TelegramConfig,
	sessionTTL time.Duration,
	sessionUC handlers.SessionUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(state.NewMemoryStorage(sessionTTL))

	b, err := bot.New(cfg, stateManager, sessionUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	sessionUC := b.GetSessionUsecase()

	sessionHandler := handlers.NewSessionHandler(api, stateManager, sessionUC, b.GetKeyboard(), logger)
	b.RegisterHandler(sessionHandler)

	callbackHandler := handlers.NewCallbackHandler(api, stateManager, sessionUC, sessionHandler, logger)
	b.RegisterHandler(callbackHandler)

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 2),
	)
}
