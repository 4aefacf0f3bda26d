package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/telegram/keyboard"
	"github.com/futig/coverletter-backend/internal/telegram/render"
	"github.com/futig/coverletter-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline button clicks
type CallbackHandler struct {
	BaseHandler
	stateManager   *state.Manager
	sessionUC      SessionUsecase
	sessionHandler *SessionHandler
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	api Sender,
	stateManager *state.Manager,
	sessionUC SessionUsecase,
	sessionHandler *SessionHandler,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(api, logger),
		},
		stateManager:   stateManager,
		sessionUC:      sessionUC,
		sessionHandler: sessionHandler,
	}
}

// Handle implements Handler
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	switch {
	case data.Action == keyboard.ActionStart && data.Value == "start":
		return h.sessionHandler.Start(ctx, msg.UserID, msg.ChatID)
	case data.Action == keyboard.ActionConfirm && data.Value == "cancel":
		return h.Cancel(ctx, msg.UserID, msg.ChatID)
	case data.Action == keyboard.ActionConfirm && data.Value == "continue":
		_ = h.stateManager.UpdateStateData(ctx, msg.UserID, func(d *state.StateData) {
			d.PendingConfirmation = ""
		})
		h.sendMessage(msg.ChatID, render.MsgContinue, nil)
		return nil
	default:
		return fmt.Errorf("unknown callback %q", msg.CallbackData)
	}
}

// Cancel closes the user's session and forgets the mapping
func (h *CallbackHandler) Cancel(ctx context.Context, userID, chatID int64) error {
	tgSession, err := h.stateManager.GetSession(ctx, userID)
	if err != nil {
		h.sendMessage(chatID, render.ErrSessionNotFound, nil)
		return nil
	}

	if err := h.sessionUC.CloseSession(ctx, tgSession.SessionID); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
		ctxzap.Error(ctx, "failed to close session",
			zap.Error(err),
			zap.String("session_id", tgSession.SessionID),
		)
	}

	if err := h.stateManager.DeleteSession(ctx, userID); err != nil {
		ctxzap.Error(ctx, "failed to delete telegram session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}

	h.sendMessage(chatID, render.MsgSessionFinished, nil)
	return nil
}
