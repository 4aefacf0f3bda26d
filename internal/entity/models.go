package entity

import (
	"fmt"
	"strings"
	"time"
)

// Origin tells who produced a transcript message
type Origin string

const (
	OriginAsker      Origin = "ASKER"      // Scripted questions and system notices
	OriginRespondent Origin = "RESPONDENT" // Raw user input
)

// MessageKind distinguishes plain text from artifact references
type MessageKind string

const (
	MessageKindText     MessageKind = "TEXT"
	MessageKindArtifact MessageKind = "ARTIFACT"
)

// ArtifactHandlePrefix is the reserved prefix of every artifact handle
const ArtifactHandlePrefix = "artifact:"

// Message is a single transcript entry. Messages are never mutated after append.
type Message struct {
	Kind      MessageKind `json:"kind"`
	Origin    Origin      `json:"origin"`
	Text      string      `json:"text,omitempty"`
	Handle    string      `json:"handle,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTextMessage creates a text message
func NewTextMessage(origin Origin, text string) Message {
	return Message{
		Kind:      MessageKindText,
		Origin:    origin,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewArtifactMessage creates an asker message referencing a rendered artifact
func NewArtifactMessage(handle string) Message {
	return Message{
		Kind:      MessageKindArtifact,
		Origin:    OriginAsker,
		Handle:    handle,
		CreatedAt: time.Now().UTC(),
	}
}

func (m Message) IsArtifact() bool {
	return m.Kind == MessageKindArtifact
}

// IsArtifactHandle reports whether s follows the artifact handle convention
func IsArtifactHandle(s string) bool {
	return strings.HasPrefix(s, ArtifactHandlePrefix) && len(s) > len(ArtifactHandlePrefix)
}

// ArtifactID strips the reserved prefix from a handle
func ArtifactID(handle string) string {
	return strings.TrimPrefix(handle, ArtifactHandlePrefix)
}

// Prompt is one fixed question of the script
type Prompt struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// AnswerSet maps Prompt.Key to the raw respondent input
type AnswerSet map[string]string

// Clone returns an independent copy
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Stage is the sequencer position in the script
type Stage string

const (
	StageAsking             Stage = "ASKING"              // Waiting for an answer to the current prompt
	StageAwaitingGeneration Stage = "AWAITING_GENERATION" // All prompts answered, finalization pending or running
	StageDone               Stage = "DONE"                // Finalization finished, no more answers accepted
)

// GenerationStatus is the presenter-facing indicator
type GenerationStatus string

const (
	GenerationStatusIdle       GenerationStatus = "idle"
	GenerationStatusGenerating GenerationStatus = "generating"
	GenerationStatusDone       GenerationStatus = "done"
)

func (s GenerationStatus) Validate() error {
	switch s {
	case GenerationStatusIdle, GenerationStatusGenerating, GenerationStatusDone:
		return nil
	default:
		return fmt.Errorf("unknown generation status: %s", s)
	}
}

// SequencerState is a point-in-time copy of the sequencer
type SequencerState struct {
	Stage          Stage            `json:"stage"`
	Status         GenerationStatus `json:"status"`
	CurrentIndex   int              `json:"current_index"`
	TotalPrompts   int              `json:"total_prompts"`
	CurrentPrompt  *Prompt          `json:"current_prompt,omitempty"`
	PromptPending  bool             `json:"prompt_pending"`
	Answers        AnswerSet        `json:"answers"`
	ArtifactHandle string           `json:"artifact_handle,omitempty"`
}
