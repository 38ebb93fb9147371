package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/medvoice/medvoice-backend/internal/models"
	"github.com/medvoice/medvoice-backend/internal/services"
	"github.com/medvoice/medvoice-backend/internal/store"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// RequireUser rejects requests without a valid bearer token before any
// resource logic runs. On success the resolved user is stored in the
// request context; handlers read it back with UserFrom.
func RequireUser(tokens *services.TokenService, users store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "Missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			userID, ok := tokens.Verify(token)
			if !ok {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user stored by RequireUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
