package sequencer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const DefaultPromptDelay = 500 * time.Millisecond

// Option customizes Sequencer construction
type Option func(*Sequencer)

// WithPromptDelay sets the pause before the next prompt is shown. Zero shows it inline.
func WithPromptDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		s.promptDelay = d
	}
}

// WithClock overrides the source of the current date used in the request
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScheduler overrides how the delayed prompt task is posted
func WithScheduler(schedule func(time.Duration, func())) Option {
	return func(s *Sequencer) {
		if schedule != nil {
			s.schedule = schedule
		}
	}
}

func afterFunc(d time.Duration, task func()) {
	if d <= 0 {
		task()
		return
	}
	time.AfterFunc(d, task)
}

// Sequencer walks the respondent through the script and runs finalization
// once the last prompt is answered. One Sequencer serves one conversation.
type Sequencer struct {
	script     *entity.Script
	composer   *Composer
	transcript Transcript
	generator  Generator
	renderer   Renderer
	artifacts  ArtifactStore
	logger     *zap.Logger

	promptDelay time.Duration
	schedule    func(time.Duration, func())
	now         func() time.Time

	mu             sync.Mutex
	index          int
	answers        entity.AnswerSet
	stage          entity.Stage
	status         entity.GenerationStatus
	pending        bool
	finalizing     bool
	artifactHandle string
}

// New creates a sequencer positioned at the first prompt. Call Start to show it.
func New(
	script *entity.Script,
	transcript Transcript,
	generator Generator,
	renderer Renderer,
	artifacts ArtifactStore,
	logger *zap.Logger,
	opts ...Option,
) (*Sequencer, error) {
	if script == nil || len(script.Prompts) == 0 {
		return nil, fmt.Errorf("%w: no prompts", entity.ErrInvalidScript)
	}

	composer, err := NewComposer(script)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sequencer{
		script:      script,
		composer:    composer,
		transcript:  transcript,
		generator:   generator,
		renderer:    renderer,
		artifacts:   artifacts,
		logger:      logger,
		promptDelay: DefaultPromptDelay,
		schedule:    afterFunc,
		now:         time.Now,
		answers:     make(entity.AnswerSet, len(script.Prompts)),
		stage:       entity.StageAsking,
		status:      entity.GenerationStatusIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start shows the first prompt unless the transcript already contains it
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.script.Prompts[0].Text
	if s.transcript.HasAsked(first) {
		return
	}

	s.transcript.Append(entity.NewTextMessage(entity.OriginAsker, first))
}

// SubmitAnswer records the answer and, when it was the last one, runs finalization
func (s *Sequencer) SubmitAnswer(ctx context.Context, raw string) (*Outcome, error) {
	outcome, err := s.Record(ctx, raw)
	if err != nil {
		return nil, err
	}

	if !outcome.Final {
		return outcome, nil
	}

	handle, err := s.Finalize(ctx)
	outcome.ArtifactHandle = handle
	return outcome, err
}

// Record stores one answer without running finalization.
// Outcome.Final tells the caller that Finalize must follow.
func (s *Sequencer) Record(ctx context.Context, raw string) (*Outcome, error) {
	ctx = s.withLogger(ctx)

	if strings.TrimSpace(raw) == "" {
		return nil, entity.ErrEmptyInput
	}

	s.mu.Lock()

	switch {
	case s.stage == entity.StageDone:
		s.mu.Unlock()
		return nil, entity.ErrSessionDone
	case s.stage == entity.StageAwaitingGeneration:
		s.mu.Unlock()
		return nil, entity.ErrFinalizationInProgress
	case s.pending:
		s.mu.Unlock()
		return nil, entity.ErrPromptPending
	}

	prompt := s.script.Prompts[s.index]
	s.transcript.Append(entity.NewTextMessage(entity.OriginRespondent, raw))
	s.answers[prompt.Key] = raw

	ctxzap.Debug(ctx, "answer recorded",
		zap.String("prompt_key", prompt.Key),
		zap.Int("prompt_index", s.index),
	)

	next := s.index + 1
	if next == len(s.script.Prompts) {
		s.index = next
		s.stage = entity.StageAwaitingGeneration
		s.status = entity.GenerationStatusGenerating
		s.mu.Unlock()

		return &Outcome{Accepted: true, Final: true}, nil
	}

	s.index = next
	s.pending = true
	nextText := s.script.Prompts[next].Text
	s.mu.Unlock()

	s.schedule(s.promptDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.transcript.Append(entity.NewTextMessage(entity.OriginAsker, nextText))
		s.pending = false
	})

	return &Outcome{Accepted: true}, nil
}

// withLogger attaches the sequencer logger to contexts that carry none
func (s *Sequencer) withLogger(ctx context.Context) context.Context {
	if ctxzap.Extract(ctx).Core().Enabled(zapcore.FatalLevel) {
		return ctx
	}
	return ctxzap.ToContext(ctx, s.logger)
}

// State returns a copy of the sequencer state
func (s *Sequencer) State() entity.SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := entity.SequencerState{
		Stage:          s.stage,
		Status:         s.status,
		CurrentIndex:   s.index,
		TotalPrompts:   len(s.script.Prompts),
		PromptPending:  s.pending,
		Answers:        s.answers.Clone(),
		ArtifactHandle: s.artifactHandle,
	}

	if s.stage == entity.StageAsking && s.index < len(s.script.Prompts) {
		prompt := s.script.Prompts[s.index]
		state.CurrentPrompt = &prompt
	}

	return state
}

// Outcome describes the effect of an accepted answer
type Outcome struct {
	Accepted       bool
	Final          bool
	ArtifactHandle string
}
