package api

import (
	"net/http"
	"time"

	artifactapi "github.com/futig/coverletter-backend/internal/api/artifact"
	"github.com/futig/coverletter-backend/internal/api/docs"
	"github.com/futig/coverletter-backend/internal/api/middleware"
	sessionapi "github.com/futig/coverletter-backend/internal/api/session"
	"github.com/futig/coverletter-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig holds the router level settings
type RouterConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	sessionHandler *sessionapi.Handler,
	artifactHandler *artifactapi.Handler,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(chimiddleware.RequestID)             // Add request ID
	r.Use(middleware.Logger(logger))           // Log requests
	r.Use(middleware.CORS(cfg.AllowedOrigins)) // Handle CORS

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	sessionapi.RegisterRoutes(r, sessionHandler, cfg.RequestTimeout)
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		artifactapi.RegisterRoutes(r, artifactHandler)
	})

	return r
}
