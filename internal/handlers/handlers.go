// Package handlers contains the HTTP surface: request validation, the
// per-resource authorization gate, and response shaping. Domain rules live
// in internal/services.
package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/medvoice/medvoice-backend/internal/services"
	"github.com/medvoice/medvoice-backend/internal/store"
)

// Handler bundles the collaborators every endpoint needs. All dependencies
// are injected by construction.
type Handler struct {
	Users       store.UserStore
	Auth        *services.AuthService
	Tokens      *services.TokenService
	Recordings  *services.RecordingService
	OAuth       *oauth2.Config
	FrontendURL string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
