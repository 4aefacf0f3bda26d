package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/telegram/keyboard"
	"github.com/futig/coverletter-backend/internal/telegram/render"
	"github.com/futig/coverletter-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionHandler walks a chat through the letter questions
type SessionHandler struct {
	BaseHandler
	api          Sender
	stateManager *state.Manager
	sessionUC    SessionUsecase
	keyboard     *keyboard.Builder
	logger       *zap.Logger
}

// NewSessionHandler creates the handler for the ANSWERING state
func NewSessionHandler(
	api Sender,
	stateManager *state.Manager,
	sessionUC SessionUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAnswering,
			messageSender: NewMessageSender(api, logger),
		},
		api:          api,
		stateManager: stateManager,
		sessionUC:    sessionUC,
		keyboard:     keyboard,
		logger:       logger,
	}
}

// Start opens a new letter session for the user and shows the first question.
// A previous session of the user is dropped.
func (h *SessionHandler) Start(ctx context.Context, userID, chatID int64) error {
	if prev, err := h.stateManager.GetSession(ctx, userID); err == nil {
		if err := h.sessionUC.CloseSession(ctx, prev.SessionID); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
			ctxzap.Warn(ctx, "failed to close previous session", zap.Error(err))
		}
	}

	snapshot, err := h.sessionUC.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	updates, unsubscribe, err := h.sessionUC.Subscribe(ctx, snapshot.ID)
	if err != nil {
		return fmt.Errorf("subscribe to session: %w", err)
	}

	if err := h.stateManager.Bind(ctx, userID, chatID, snapshot.ID, unsubscribe); err != nil {
		unsubscribe()
		return err
	}

	ctxzap.Info(ctx, "letter session started",
		zap.String("session_id", snapshot.ID),
		zap.Int64("user_id", userID),
	)

	for _, msg := range snapshot.Messages {
		h.deliver(ctx, chatID, msg)
	}

	fwdCtx := ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx).With(zap.String("session_id", snapshot.ID)))
	go h.forward(fwdCtx, chatID, updates)

	return nil
}

// Handle records a text answer. The last answer triggers letter generation.
func (h *SessionHandler) Handle(ctx context.Context, msg *Message) error {
	if msg.Text == "" {
		h.sendMessage(msg.ChatID, render.MsgTextOnly, nil)
		return nil
	}

	tgSession, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, entity.ErrSessionNotFound)
		return nil
	}

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("session_id", tgSession.SessionID)))

	result, err := h.sessionUC.SubmitAnswer(ctx, tgSession.SessionID, &entity.SubmitAnswerRequest{Answer: msg.Text})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if !result.Accepted {
		ctxzap.Debug(ctx, "blank answer ignored")
		return nil
	}

	if !result.Finalize {
		return nil
	}

	return h.finalize(ctx, msg, tgSession.SessionID)
}

func (h *SessionHandler) finalize(ctx context.Context, msg *Message, sessionID string) error {
	_ = h.stateManager.UpdateStateData(ctx, msg.UserID, func(d *state.StateData) {
		d.IsProcessing = true
		d.ProcessingStarted = time.Now()
	})

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)

	_, err := h.sessionUC.Finalize(ctx, sessionID)

	typing.Stop()

	_ = h.stateManager.UpdateStateData(ctx, msg.UserID, func(d *state.StateData) {
		d.IsProcessing = false
	})

	if errors.Is(err, entity.ErrGenerationFailed) || errors.Is(err, entity.ErrRenderingFailed) {
		// The failure notice reaches the chat through the transcript
		ctxzap.Warn(ctx, "letter generation failed", zap.Error(err))
		return nil
	}
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}

	return nil
}

// forward sends asker messages appended to the transcript until the subscription closes
func (h *SessionHandler) forward(ctx context.Context, chatID int64, updates <-chan entity.Message) {
	for msg := range updates {
		h.deliver(ctx, chatID, msg)
	}

	ctxzap.Debug(ctx, "transcript forwarding stopped")
}

func (h *SessionHandler) deliver(ctx context.Context, chatID int64, msg entity.Message) {
	if msg.Origin != entity.OriginAsker {
		return
	}

	if !msg.IsArtifact() {
		h.sendMessage(chatID, msg.Text, nil)
		return
	}

	artifact, err := h.sessionUC.GetArtifact(ctx, msg.Handle)
	if err != nil {
		ctxzap.Error(ctx, "failed to load artifact", zap.Error(err), zap.String("handle", msg.Handle))
		h.sendMessage(chatID, render.ErrGeneric, nil)
		return
	}

	if err := h.messageSender.SendDocument(chatID, artifact.Filename(), artifact.Data, h.keyboard.RestartKeyboard()); err != nil {
		h.sendMessage(chatID, render.ErrGeneric, nil)
	}
}
