package handlers

import (
	"context"

	"github.com/futig/coverletter-backend/internal/entity"
)

// SessionUsecase defines the session operations used by the Telegram bot
type SessionUsecase interface {
	StartSession(ctx context.Context) (*entity.SessionSnapshot, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.SubmitResult, error)
	Finalize(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.Message, func(), error)
	CloseSession(ctx context.Context, sessionID string) error
	GetArtifact(ctx context.Context, ref string) (*entity.Artifact, error)
}
