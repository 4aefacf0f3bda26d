package session

import (
	"context"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/usecase/sequencer"
)

// ArtifactStore keeps rendered documents and resolves handles back to them
type ArtifactStore interface {
	sequencer.ArtifactStore
	Get(ctx context.Context, ref string) (*entity.Artifact, error)
}
