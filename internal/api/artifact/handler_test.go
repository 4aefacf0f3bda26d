package artifact_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	artifactapi "github.com/futig/coverletter-backend/internal/api/artifact"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/artifact"
	"github.com/go-chi/chi/v5"
)

func newRouter(store *artifact.Store) http.Handler {
	r := chi.NewRouter()
	artifactapi.RegisterRoutes(r, artifactapi.NewHandler(store))
	return r
}

func TestDownload(t *testing.T) {
	store := artifact.NewStore(time.Minute)
	handle, err := store.Put(context.Background(), &entity.Artifact{
		Data:          []byte("# Ada - Cover Letter"),
		ContentType:   "text/markdown; charset=utf-8",
		FileExtension: ".md",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	rec := httptest.NewRecorder()
	newRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artifacts/"+entity.ArtifactID(handle), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "text/markdown; charset=utf-8" {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	want := `attachment; filename="cover-letter-` + entity.ArtifactID(handle) + `.md"`
	if rec.Header().Get("Content-Disposition") != want {
		t.Fatalf("content disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.String() != "# Ada - Cover Letter" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestDownloadMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(artifact.NewStore(time.Minute)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artifacts/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
