package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/models"
	"github.com/medvoice/medvoice-backend/internal/store"
)

// AuthService maps external (Google) identities to internal user records.
type AuthService struct {
	users store.UserStore
}

func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{users: users}
}

// UpsertFromLogin is called on every successful external login. If a user
// with the given Google id exists, its email, display name and avatar are
// overwritten (last login wins); otherwise a new user is created.
func (s *AuthService) UpsertFromLogin(ctx context.Context, googleID, email, displayName, avatarURL string) (*models.User, error) {
	existing, err := s.users.GetByGoogleID(ctx, googleID)
	if err == nil {
		return s.users.UpdateProfile(ctx, existing.ID, email, displayName, avatarURL)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		GoogleID:    googleID,
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
