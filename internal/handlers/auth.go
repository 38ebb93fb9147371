package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/medvoice/medvoice-backend/internal/middleware"
	"github.com/medvoice/medvoice-backend/internal/services"
)

const stateCookieName = "oauthstate"

// googleUserInfo is the OpenID Connect userinfo payload. Subject id and
// email are required; name and picture are optional.
type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleLogin redirects the browser to Google's consent page.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.OAuth.ClientID == "" || h.OAuth.ClientSecret == "" {
		writeError(w, http.StatusInternalServerError,
			"Google OAuth not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.")
		return
	}

	stateBytes := make([]byte, 24)
	if _, err := rand.Read(stateBytes); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}
	state := base64.URLEncoding.EncodeToString(stateBytes)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback exchanges the authorization code, fetches the verified
// claims, upserts the user and redirects to the frontend with a fresh
// bearer token.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.OAuth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("ERROR: OAuth code exchange failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	resp, err := h.OAuth.Client(r.Context(), token).Get(services.GoogleUserInfoURL)
	if err != nil {
		log.Printf("ERROR: Failed to fetch user info: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get user info from Google")
		return
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user info from Google")
		return
	}
	if info.Sub == "" || info.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing required user information from Google")
		return
	}

	user, err := h.Auth.UpsertFromLogin(r.Context(), info.Sub, info.Email, info.Name, info.Picture)
	if err != nil {
		log.Printf("ERROR: Failed to upsert user: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	accessToken, err := h.Tokens.Issue(user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	http.Redirect(w, r, h.FrontendURL+"/auth/callback?token="+accessToken, http.StatusTemporaryRedirect)
}

// VerifyToken returns the authenticated user's profile. The bearer token
// was already validated by the auth middleware.
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
