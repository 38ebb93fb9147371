package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvoice/medvoice-backend/internal/store"
)

func TestUpsertFromLoginCreatesUser(t *testing.T) {
	users := store.NewMemoryUserStore()
	svc := NewAuthService(users)

	user, err := svc.UpsertFromLogin(context.Background(), "google-123", "a@example.com", "Dr. A", "https://avatar/a.png")
	require.NoError(t, err)

	assert.Equal(t, "google-123", user.GoogleID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "Dr. A", user.DisplayName)
	assert.Equal(t, 1, users.Len())
}

func TestUpsertFromLoginLastLoginWins(t *testing.T) {
	users := store.NewMemoryUserStore()
	svc := NewAuthService(users)
	ctx := context.Background()

	first, err := svc.UpsertFromLogin(ctx, "google-123", "old@example.com", "Dr. A", "")
	require.NoError(t, err)

	second, err := svc.UpsertFromLogin(ctx, "google-123", "new@example.com", "Dr. A Updated", "https://avatar/a.png")
	require.NoError(t, err)

	// Exactly one stored user, same internal id, second login's profile.
	assert.Equal(t, 1, users.Len())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new@example.com", second.Email)
	assert.Equal(t, "Dr. A Updated", second.DisplayName)

	stored, err := users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", stored.Email)
}

func TestUpsertFromLoginDistinctIdentities(t *testing.T) {
	users := store.NewMemoryUserStore()
	svc := NewAuthService(users)
	ctx := context.Background()

	a, err := svc.UpsertFromLogin(ctx, "google-a", "a@example.com", "A", "")
	require.NoError(t, err)
	b, err := svc.UpsertFromLogin(ctx, "google-b", "b@example.com", "B", "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, users.Len())
}
