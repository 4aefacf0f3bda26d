package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/telegram/handlers"
	"github.com/futig/coverletter-backend/internal/telegram/keyboard"
	"github.com/futig/coverletter-backend/internal/telegram/middleware"
	"github.com/futig/coverletter-backend/internal/telegram/render"
	"github.com/futig/coverletter-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	sessionUC    handlers.SessionUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
	loggingMW    *middleware.LoggingMiddleware
	recoveryMW   *middleware.RecoveryMiddleware
	rateLimitMW  *middleware.RateLimiterMiddleware
	updatesChan  tgbotapi.UpdatesChannel
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	sessionUC handlers.SessionUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:          api,
		cfg:          cfg,
		stateManager: stateManager,
		sessionUC:    sessionUC,
		keyboard:     keyboard.NewBuilder(),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		stopChan:     make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, logger, api)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.Int64("user_id", message.From.ID)))

	handler, exists := b.handlers[handlers.HandlerStateAnswering]
	if !exists {
		ctxzap.Warn(ctx, "answer handler not registered")
		b.sendError(message.Chat.ID, render.ErrGeneric)
		return
	}

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error", zap.Error(err))
		b.sendError(message.Chat.ID, render.ClassifyError(err))
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "help":
		b.sendMessageLogged(ctx, message.Chat.ID, render.MsgHelp, nil)
	case "cancel":
		b.handleCancelCommand(ctx, message)
	default:
		b.sendError(message.Chat.ID, "❌ Unknown command. Use /help")
	}
}

// handleStartCommand greets the user and starts a letter right away
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	b.sendMessageLogged(ctx, message.Chat.ID, render.MsgWelcome, nil)
	b.dispatchCallback(ctx, &handlers.Message{
		ChatID:       message.Chat.ID,
		UserID:       message.From.ID,
		CallbackData: keyboard.EncodeCallback(keyboard.ActionStart, "start"),
	})
}

// handleCancelCommand asks for confirmation before dropping the session
func (b *Bot) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	err := b.stateManager.UpdateStateData(ctx, userID, func(d *state.StateData) {
		d.PendingConfirmation = "cancel"
	})
	if err != nil {
		b.sendMessageLogged(ctx, chatID, render.ErrSessionNotFound, b.keyboard.StartKeyboard())
		return
	}

	b.sendMessageLogged(ctx, chatID, render.MsgCancelConfirm, b.keyboard.CancelConfirmKeyboard())
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(query.ID, "")
		return
	}

	if _, err := keyboard.ParseCallback(query.Data); err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, "❌ Invalid data")
		return
	}

	// Answer right away so Telegram does not consider the query stale
	b.answerCallback(query.ID, "")

	b.dispatchCallback(ctx, &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	})
}

func (b *Bot) dispatchCallback(ctx context.Context, msg *handlers.Message) {
	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		return
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "callback handler error",
			zap.Error(err),
			zap.Int64("user_id", msg.UserID),
		)
		b.sendError(msg.ChatID, render.ClassifyError(err))
	}
}

// sendMessageLogged sends a message and logs failures
func (b *Bot) sendMessageLogged(ctx context.Context, chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}

	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a state
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	state := handler.GetState()

	if !handlers.IsValidState(state) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", state),
		)
	}

	b.handlers[state] = handler
	b.logger.Info("handler registered",
		zap.String("state", state),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetSessionUsecase returns the session usecase (for handlers)
func (b *Bot) GetSessionUsecase() handlers.SessionUsecase {
	return b.sessionUC
}
