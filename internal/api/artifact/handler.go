package artifact

import (
	"context"
	"errors"
	"net/http"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/logger"
	"github.com/futig/coverletter-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type ArtifactStore interface {
	Get(ctx context.Context, ref string) (*entity.Artifact, error)
}

type Handler struct {
	store ArtifactStore
}

func NewHandler(store ArtifactStore) *Handler {
	return &Handler{store: store}
}

// Download handles GET /artifacts/{id} - Download a rendered letter
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	artifactID := chi.URLParam(r, "id")

	ctx := logger.AddFields(r.Context(),
		zap.String("artifact_id", artifactID),
		zap.String("action", "DownloadArtifact"),
	)

	a, err := h.store.Get(ctx, artifactID)
	if errors.Is(err, entity.ErrArtifactNotFound) {
		ctxzap.Warn(ctx, "artifact not found")
		response.Error(w, http.StatusNotFound, "artifact not found or expired")
		return
	}
	if err != nil {
		ctxzap.Error(ctx, "failed to load artifact", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctxzap.Info(ctx, "serving artifact",
		zap.String("content_type", a.ContentType),
		zap.Int("size_bytes", len(a.Data)),
	)

	response.Binary(w, a.ContentType, a.Filename(), a.Data)
}

// RegisterRoutes registers artifact routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/artifacts/{id}", h.Download)
}
