package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/logger"
	"github.com/futig/coverletter-backend/internal/pkg/response"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      SessionUsecase
	callbackConn CallbackConnector
	validator    *validator.Validator
}

func NewHandler(
	usecase SessionUsecase,
	validator *validator.Validator,
	callbackConn CallbackConnector,
) *Handler {
	return &Handler{
		usecase:      usecase,
		validator:    validator,
		callbackConn: callbackConn,
	}
}

// StartSession handles POST /letter-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	snapshot, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session created", zap.String("session_id", snapshot.ID))

	response.Created(w, toSessionDTO(snapshot))
}

// GetSession handles GET /letter-session/{id} - Get session state and transcript
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r, "GetSession")
	if !ok {
		return
	}

	ctxzap.Debug(ctx, "fetching session")

	snapshot, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(snapshot))
}

// GetMessages handles GET /letter-session/{id}/messages - Get transcript only
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r, "GetMessages")
	if !ok {
		return
	}

	msgs, err := h.usecase.GetMessages(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toMessageDTOs(msgs))
}

// SubmitAnswer handles POST /letter-session/{id}/answer - Submit an answer.
// The last answer returns 202 and the letter is produced in the background.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r, "SubmitAnswer")
	if !ok {
		return
	}

	requestID := chimiddleware.GetReqID(r.Context())

	var req entity.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.SubmitAnswer(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if !result.Finalize {
		ctxzap.Info(ctx, "answer processed", zap.Bool("accepted", result.Accepted))
		response.Success(w, toSessionDTO(result.Snapshot))
		return
	}

	ctxzap.Info(ctx, "last answer recorded, generating letter")

	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", requestID),
			zap.String("action", "Finalize-async"),
		)

		snapshot, err := h.usecase.Finalize(bgCtx, sessionID)
		if err != nil {
			ctxzap.Error(bgCtx, "failed to finalize session", zap.Error(err))
			if req.CallbackURL != "" {
				h.callbackConn.SendError(bgCtx, req.CallbackURL, requestID, "failed to generate cover letter", map[string]any{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
			return
		}

		ctxzap.Info(bgCtx, "session finalized successfully")

		if req.CallbackURL != "" {
			h.callbackConn.SendFinalResult(bgCtx, req.CallbackURL, requestID, toSessionDTO(snapshot))
		}
	}()

	response.Accepted(w, toSessionDTO(result.Snapshot))
}

// CancelSession handles POST /letter-session/{id}/cancel - Drop the session
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID, ok := h.sessionContext(w, r, "CancelSession")
	if !ok {
		return
	}

	if err := h.usecase.CloseSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]string{
		"status":  "cancelled",
		"message": "session has been closed",
	})
}

// sessionContext validates the {id} path parameter and tags the logger with it
func (h *Handler) sessionContext(w http.ResponseWriter, r *http.Request, action string) (context.Context, string, bool) {
	sessionID := chi.URLParam(r, "id")

	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)

	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid session id", err)
		return ctx, "", false
	}

	return ctx, sessionID, true
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	h.respondError(ctx, w, status, message, err)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrArtifactNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrAnswerTooLong):
		return http.StatusBadRequest, "invalid parameter"
	case errors.Is(err, entity.ErrSessionDone), errors.Is(err, entity.ErrFinalizationInProgress),
		errors.Is(err, entity.ErrPromptPending), errors.Is(err, entity.ErrNotReadyToFinalize):
		return http.StatusConflict, "invalid session state"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
