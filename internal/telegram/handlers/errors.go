package handlers

import (
	"context"
	"errors"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// isUserError reports errors caused by the user rather than the service
func isUserError(err error) bool {
	return errors.Is(err, entity.ErrSessionNotFound) ||
		errors.Is(err, entity.ErrPromptPending) ||
		errors.Is(err, entity.ErrSessionDone) ||
		errors.Is(err, entity.ErrFinalizationInProgress) ||
		errors.Is(err, entity.ErrNotReadyToFinalize) ||
		errors.Is(err, entity.ErrAnswerTooLong)
}

// HandleError logs err with a level matching its cause and sends a user-friendly message
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	if isUserError(err) {
		ctxzap.Warn(ctx, "request rejected", zap.Error(err), zap.Int64("chat_id", chatID))
	} else {
		ctxzap.Error(ctx, "handler error", zap.Error(err), zap.Int64("chat_id", chatID))
	}

	h.sendMessage(chatID, render.ClassifyError(err), nil)
}
