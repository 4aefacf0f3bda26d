package session

import (
	"context"

	"github.com/futig/coverletter-backend/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context) (*entity.SessionSnapshot, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error)
	GetMessages(ctx context.Context, sessionID string) ([]entity.Message, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.SubmitResult, error)
	Finalize(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.Message, func(), error)
	CloseSession(ctx context.Context, sessionID string) error
}

type CallbackConnector interface {
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
	SendFinalResult(ctx context.Context, callbackURL string, requestID string, data *entity.SessionDTO)
}
