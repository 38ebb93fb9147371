// Package store defines the persistence interfaces for users, recordings
// and chunks, with a PostgreSQL implementation for production and an
// in-memory implementation for tests. Implementations are injected by
// construction; nothing in this package reaches for globals.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/models"
)

// ErrNotFound is returned when a lookup resolves no row.
var ErrNotFound = errors.New("not found")

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	// UpdateProfile overwrites email, display name and avatar. Last login wins.
	UpdateProfile(ctx context.Context, id uuid.UUID, email, displayName, avatarURL string) (*models.User, error)
}

type RecordingStore interface {
	Create(ctx context.Context, userID uuid.UUID, provider string) (*models.Recording, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recording, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Recording, error)

	AddChunk(ctx context.Context, chunk *models.Chunk) error
	// Chunks returns all chunk metadata for a recording ordered by chunk
	// index ascending. Duplicate indices keep their insertion order.
	Chunks(ctx context.Context, recordingID uuid.UUID) ([]*models.Chunk, error)

	MarkPaused(ctx context.Context, id uuid.UUID) (*models.Recording, error)
	MarkEnded(ctx context.Context, id uuid.UUID, audioFilePath, transcription string) (*models.Recording, error)
}
