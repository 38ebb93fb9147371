package services

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/medvoice/medvoice-backend/internal/config"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint; var so tests
// can point it at a stub server.
var GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// NewGoogleOAuth builds the OAuth client configuration once at startup.
// The returned config is injected into the auth handler; there is no
// package-level singleton.
func NewGoogleOAuth(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}
