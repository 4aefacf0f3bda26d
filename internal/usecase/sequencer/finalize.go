package sequencer

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Finalize composes the request, generates the letter, renders it and appends
// the download reference. It runs at most once per sequencer. Failures leave
// the transcript without an artifact and the sequencer in the done stage.
func (s *Sequencer) Finalize(ctx context.Context) (string, error) {
	ctx = s.withLogger(ctx)

	s.mu.Lock()
	switch {
	case s.stage == entity.StageDone:
		s.mu.Unlock()
		return "", entity.ErrSessionDone
	case s.stage != entity.StageAwaitingGeneration:
		s.mu.Unlock()
		return "", entity.ErrNotReadyToFinalize
	case s.finalizing:
		s.mu.Unlock()
		return "", entity.ErrFinalizationInProgress
	}

	s.finalizing = true
	answers := s.answers.Clone()
	s.mu.Unlock()

	ctxzap.Info(ctx, "finalizing session", zap.Int("answer_count", len(answers)))

	handle, err := s.produce(ctx, answers)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stage = entity.StageDone
	s.finalizing = false

	if err != nil {
		s.status = entity.GenerationStatusIdle
		ctxzap.Warn(ctx, "finalization failed", zap.Error(err))

		if s.script.FailureNotice != "" {
			s.transcript.Append(entity.NewTextMessage(entity.OriginAsker, s.script.FailureNotice))
		}
		return "", err
	}

	s.status = entity.GenerationStatusDone
	s.artifactHandle = handle
	s.transcript.Append(entity.NewTextMessage(entity.OriginAsker, s.script.Announcement))
	s.transcript.Append(entity.NewArtifactMessage(handle))

	ctxzap.Info(ctx, "session finalized", zap.String("artifact_handle", handle))

	return handle, nil
}

// produce runs the external collaborators. It never touches sequencer state.
func (s *Sequencer) produce(ctx context.Context, answers entity.AnswerSet) (string, error) {
	request, err := s.composer.Compose(answers, s.now())
	if err != nil {
		return "", fmt.Errorf("compose request: %w", err)
	}

	text, err := s.generator.Generate(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", entity.ErrGenerationFailed
	}

	artifact, err := s.renderer.Render(ctx, s.buildDocument(answers, text))
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrRenderingFailed, err)
	}

	handle, err := s.artifacts.Put(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("%w: store artifact: %v", entity.ErrRenderingFailed, err)
	}

	if !entity.IsArtifactHandle(handle) {
		return "", fmt.Errorf("%w: malformed artifact handle %q", entity.ErrRenderingFailed, handle)
	}

	return handle, nil
}

func (s *Sequencer) buildDocument(answers entity.AnswerSet, body string) *entity.DocumentRequest {
	keys := s.script.Document
	name := answers[keys.NameKey]

	contact := make([]string, 0, 2)
	for _, key := range []string{keys.EmailKey, keys.PhoneKey} {
		if v := answers[key]; v != "" {
			contact = append(contact, v)
		}
	}

	return &entity.DocumentRequest{
		Header:    name + keys.HeaderSuffix,
		Contact:   strings.Join(contact, " | "),
		Body:      body,
		Signature: keys.Closing + "\n" + name,
	}
}
