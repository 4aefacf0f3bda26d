package entity

import "errors"

// Domain errors
var (
	// Sequencer errors
	ErrEmptyInput             = errors.New("answer is empty")
	ErrPromptPending          = errors.New("next prompt is not shown yet")
	ErrFinalizationInProgress = errors.New("letter generation is in progress")
	ErrSessionDone            = errors.New("session is already completed")
	ErrNotReadyToFinalize     = errors.New("not all prompts are answered")

	// Collaborator errors
	ErrGenerationFailed = errors.New("generation produced no text")
	ErrRenderingFailed  = errors.New("document rendering failed")

	// Lookup errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrArtifactNotFound = errors.New("artifact not found")

	// Configuration errors
	ErrInvalidScript = errors.New("invalid script")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrAnswerTooLong    = errors.New("answer is too long")
)
