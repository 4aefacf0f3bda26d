package sequencer

import (
	"context"

	"github.com/futig/coverletter-backend/internal/entity"
)

// Transcript is the message log the sequencer writes to
type Transcript interface {
	Append(msg entity.Message)
	All() []entity.Message
	HasAsked(text string) bool
}

// Generator turns the composed request into letter text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Renderer turns the document fields into a binary artifact
type Renderer interface {
	Render(ctx context.Context, req *entity.DocumentRequest) (*entity.Artifact, error)
}

// ArtifactStore keeps rendered artifacts and hands out dereferenceable handles
type ArtifactStore interface {
	Put(ctx context.Context, artifact *entity.Artifact) (string, error)
}
