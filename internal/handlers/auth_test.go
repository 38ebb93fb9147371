package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/medvoice/medvoice-backend/internal/handlers"
	"github.com/medvoice/medvoice-backend/internal/middleware"
	"github.com/medvoice/medvoice-backend/internal/routes"
	"github.com/medvoice/medvoice-backend/internal/services"
)

func newOAuthEnv(t *testing.T, endpoint oauth2.Endpoint) *testEnv {
	t.Helper()
	env := newTestEnv(t)

	h := &handlers.Handler{
		Users:  env.users,
		Auth:   services.NewAuthService(env.users),
		Tokens: env.tokens,
		OAuth: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		FrontendURL: "http://localhost:3000",
	}

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, middleware.RequireUser(env.tokens, env.users))
	env.router = r
	return env
}

func TestGoogleLoginRedirectsWithState(t *testing.T) {
	env := newOAuthEnv(t, oauth2.Endpoint{
		AuthURL:  "https://accounts.example.com/auth",
		TokenURL: "https://accounts.example.com/token",
	})

	rr := env.do(t, http.MethodGet, "/auth/google/login", "", nil, "")
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", location.Host)
	assert.Equal(t, "client-id", location.Query().Get("client_id"))

	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	// The state round-trips through a cookie.
	var stateCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauthstate" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.Equal(t, state, stateCookie.Value)
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	env := newOAuthEnv(t, oauth2.Endpoint{})

	r := chi.NewRouter()
	h := &handlers.Handler{
		OAuth:       &oauth2.Config{},
		FrontendURL: "http://localhost:3000",
	}
	routes.SetupRoutes(r, h, middleware.RequireUser(env.tokens, env.users))
	env.router = r

	rr := env.do(t, http.MethodGet, "/auth/google/login", "", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGoogleCallbackStateMismatch(t *testing.T) {
	env := newOAuthEnv(t, oauth2.Endpoint{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=evil&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "good"})
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGoogleCallbackIssuesTokenAndRedirects(t *testing.T) {
	// Stub both the token exchange and the userinfo endpoint.
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub":"google-123","email":"a@example.com","name":"Dr. A","picture":"https://avatar/a.png"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	originalUserInfoURL := services.GoogleUserInfoURL
	services.GoogleUserInfoURL = provider.URL + "/userinfo"
	defer func() { services.GoogleUserInfoURL = originalUserInfoURL }()

	env := newOAuthEnv(t, oauth2.Endpoint{
		AuthURL:  provider.URL + "/auth",
		TokenURL: provider.URL + "/token",
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz&code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "xyz"})
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	location := rr.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "http://localhost:3000/auth/callback?token="), location)

	// The token in the redirect is a valid bearer token for the upserted user.
	parsed, err := url.Parse(location)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	userID, ok := env.tokens.Verify(token)
	require.True(t, ok)

	user, err := env.users.GetByID(req.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, "google-123", user.GoogleID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "Dr. A", user.DisplayName)
	assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Minute)
}

func TestGoogleCallbackMissingRequiredClaims(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer"}`))
		case "/userinfo":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"No Subject"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer provider.Close()

	originalUserInfoURL := services.GoogleUserInfoURL
	services.GoogleUserInfoURL = provider.URL + "/userinfo"
	defer func() { services.GoogleUserInfoURL = originalUserInfoURL }()

	env := newOAuthEnv(t, oauth2.Endpoint{
		AuthURL:  provider.URL + "/auth",
		TokenURL: provider.URL + "/token",
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=xyz&code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauthstate", Value: "xyz"})
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.users.Len())
}
