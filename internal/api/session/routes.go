package session

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers session routes. The websocket stream is kept out of
// the request timeout.
func RegisterRoutes(r chi.Router, h *Handler, requestTimeout time.Duration) {
	r.Route("/letter-session", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(requestTimeout))

			r.Post("/", h.StartSession)
			r.Get("/{id}", h.GetSession)
			r.Get("/{id}/messages", h.GetMessages)
			r.Post("/{id}/answer", h.SubmitAnswer)
			r.Post("/{id}/cancel", h.CancelSession)
		})

		r.Get("/{id}/ws", h.Stream)
	})
}
