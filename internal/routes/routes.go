package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medvoice/medvoice-backend/internal/handlers"
)

// SetupRoutes registers the API surface. requireUser guards everything
// that acts on behalf of an authenticated user.
func SetupRoutes(r *chi.Mux, h *handlers.Handler, requireUser func(http.Handler) http.Handler) {
	// Google OAuth flow
	r.Get("/auth/google/login", h.GoogleLogin)
	r.Get("/auth/google/callback", h.GoogleCallback)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/auth/verify", h.VerifyToken)

		r.Route("/api/recordings", func(r chi.Router) {
			r.Get("/", h.ListRecordings)
			r.Post("/", h.CreateRecording)
			r.Get("/{recordingID}", h.GetRecording)
			r.Post("/{recordingID}/chunks", h.UploadChunk)
			r.Patch("/{recordingID}/pause", h.PauseRecording)
			r.Post("/{recordingID}/finish", h.FinishRecording)
		})
	})
}
