package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	"github.com/futig/coverletter-backend/internal/transcript"
	"github.com/futig/coverletter-backend/internal/usecase/sequencer"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// conversation is one independent letter session
type conversation struct {
	id         string
	createdAt  time.Time
	transcript *transcript.Store
	sequencer  *sequencer.Sequencer
}

// SessionUsecase owns the live conversations. Each conversation has its own
// transcript and sequencer, nothing is shared between them.
type SessionUsecase struct {
	sessions    *cache.Cache
	script      *entity.Script
	generator   sequencer.Generator
	renderer    sequencer.Renderer
	artifacts   ArtifactStore
	validator   *validator.Validator
	promptDelay time.Duration
	logger      *zap.Logger
}

// NewUsecase creates a new session use case
func NewUsecase(
	script *entity.Script,
	generator sequencer.Generator,
	renderer sequencer.Renderer,
	artifacts ArtifactStore,
	validator *validator.Validator,
	cfg config.SessionConfig,
	logger *zap.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		sessions:    cache.New(cfg.TTL, cfg.TTL/2),
		script:      script,
		generator:   generator,
		renderer:    renderer,
		artifacts:   artifacts,
		validator:   validator,
		promptDelay: cfg.PromptDelay,
		logger:      logger,
	}
}

// StartSession creates a conversation and shows the first prompt
func (uc *SessionUsecase) StartSession(ctx context.Context) (*entity.SessionSnapshot, error) {
	store := transcript.NewStore()

	seq, err := sequencer.New(
		uc.script,
		store,
		uc.generator,
		uc.renderer,
		uc.artifacts,
		uc.logger,
		sequencer.WithPromptDelay(uc.promptDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("create sequencer: %w", err)
	}

	conv := &conversation{
		id:         uuid.New().String(),
		createdAt:  time.Now().UTC(),
		transcript: store,
		sequencer:  seq,
	}
	seq.Start()

	uc.sessions.SetDefault(conv.id, conv)

	ctxzap.Info(ctx, "session started", zap.String("session_id", conv.id))

	return conv.snapshot(), nil
}

// GetSession returns the current snapshot of a conversation
func (uc *SessionUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error) {
	conv, err := uc.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return conv.snapshot(), nil
}

// GetMessages returns the transcript of a conversation
func (uc *SessionUsecase) GetMessages(ctx context.Context, sessionID string) ([]entity.Message, error) {
	conv, err := uc.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return conv.transcript.All(), nil
}

// SubmitAnswer records one answer. Blank input is not an error: the result is
// not accepted and the snapshot is unchanged. When the answer completes the
// script, the result asks the caller to run Finalize.
func (uc *SessionUsecase) SubmitAnswer(
	ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest,
) (*entity.SubmitResult, error) {
	if err := uc.validator.ValidateSubmitAnswer(req); err != nil {
		return nil, err
	}

	conv, err := uc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := conv.sequencer.Record(ctx, req.Answer)
	if errors.Is(err, entity.ErrEmptyInput) {
		ctxzap.Debug(ctx, "blank answer ignored")
		return &entity.SubmitResult{Snapshot: conv.snapshot()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	return &entity.SubmitResult{
		Snapshot: conv.snapshot(),
		Accepted: outcome.Accepted,
		Finalize: outcome.Final,
	}, nil
}

// Finalize runs generation and rendering for a completed conversation.
// The returned snapshot is valid also when err is a generation or rendering failure.
func (uc *SessionUsecase) Finalize(ctx context.Context, sessionID string) (*entity.SessionSnapshot, error) {
	conv, err := uc.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := conv.sequencer.Finalize(ctx); err != nil {
		return conv.snapshot(), fmt.Errorf("finalize session: %w", err)
	}

	return conv.snapshot(), nil
}

// Answer records the answer and runs finalization inline when it was the last one.
// Interactive front-ends use it, the HTTP API finalizes asynchronously instead.
func (uc *SessionUsecase) Answer(ctx context.Context, sessionID, text string) (*entity.SubmitResult, error) {
	result, err := uc.SubmitAnswer(ctx, sessionID, &entity.SubmitAnswerRequest{Answer: text})
	if err != nil || !result.Finalize {
		return result, err
	}

	snapshot, err := uc.Finalize(ctx, sessionID)
	if snapshot != nil {
		result.Snapshot = snapshot
	}
	return result, err
}

// Subscribe streams messages appended to the conversation after the call
func (uc *SessionUsecase) Subscribe(ctx context.Context, sessionID string) (<-chan entity.Message, func(), error) {
	conv, err := uc.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := conv.transcript.Subscribe()
	return ch, cancel, nil
}

// CloseSession forgets the conversation. Artifacts stay downloadable until they expire.
func (uc *SessionUsecase) CloseSession(ctx context.Context, sessionID string) error {
	if _, err := uc.lookup(sessionID); err != nil {
		return err
	}

	uc.sessions.Delete(sessionID)
	ctxzap.Info(ctx, "session closed", zap.String("session_id", sessionID))
	return nil
}

// GetArtifact resolves an artifact handle or ID
func (uc *SessionUsecase) GetArtifact(ctx context.Context, ref string) (*entity.Artifact, error) {
	return uc.artifacts.Get(ctx, ref)
}
