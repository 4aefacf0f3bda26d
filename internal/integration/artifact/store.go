package artifact

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Store keeps rendered artifacts in memory until their TTL expires
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, ttl/2),
	}
}

// Put stores the artifact and returns its handle. An empty ID is replaced with a fresh one.
func (s *Store) Put(ctx context.Context, artifact *entity.Artifact) (string, error) {
	if artifact == nil || len(artifact.Data) == 0 {
		return "", fmt.Errorf("%w: empty artifact", entity.ErrRenderingFailed)
	}

	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}

	s.cache.SetDefault(artifact.ID, artifact)

	ctxzap.Debug(ctx, "artifact stored",
		zap.String("artifact_id", artifact.ID),
		zap.Int("size", len(artifact.Data)),
	)

	return entity.ArtifactHandlePrefix + artifact.ID, nil
}

// Get resolves a handle or a bare artifact ID
func (s *Store) Get(_ context.Context, ref string) (*entity.Artifact, error) {
	id := entity.ArtifactID(ref)
	if id == "" {
		return nil, entity.ErrArtifactNotFound
	}

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, entity.ErrArtifactNotFound
	}

	return v.(*entity.Artifact), nil
}

func (s *Store) Count() int {
	return s.cache.ItemCount()
}
