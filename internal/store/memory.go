package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/models"
)

// MemoryUserStore is an in-memory UserStore used in tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryUserStore) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.GoogleID == googleID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, email, displayName, avatarURL string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Email = email
	u.DisplayName = displayName
	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now().UTC()
	copied := *u
	return &copied, nil
}

// Len reports the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// MemoryRecordingStore is an in-memory RecordingStore used in tests.
type MemoryRecordingStore struct {
	mu         sync.RWMutex
	recordings map[uuid.UUID]*models.Recording
	chunks     map[uuid.UUID][]*models.Chunk // keyed by recording id, insertion order
}

func NewMemoryRecordingStore() *MemoryRecordingStore {
	return &MemoryRecordingStore{
		recordings: make(map[uuid.UUID]*models.Recording),
		chunks:     make(map[uuid.UUID][]*models.Chunk),
	}
}

func (s *MemoryRecordingStore) Create(ctx context.Context, userID uuid.UUID, provider string) (*models.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	rec := &models.Recording{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.StatusActive,
		Provider:  provider,
	}
	s.recordings[rec.ID] = rec
	copied := *rec
	return &copied, nil
}

func (s *MemoryRecordingStore) Get(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryRecordingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Recording, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Recording
	for _, rec := range s.recordings {
		if rec.UserID == userID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryRecordingStore) AddChunk(ctx context.Context, chunk *models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *chunk
	s.chunks[chunk.RecordingID] = append(s.chunks[chunk.RecordingID], &copied)
	return nil
}

func (s *MemoryRecordingStore) Chunks(ctx context.Context, recordingID uuid.UUID) ([]*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Chunk, 0, len(s.chunks[recordingID]))
	for _, c := range s.chunks[recordingID] {
		copied := *c
		out = append(out, &copied)
	}
	// Stable: duplicate indices stay in insertion order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (s *MemoryRecordingStore) MarkPaused(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Status = models.StatusPaused
	rec.UpdatedAt = time.Now().UTC()
	copied := *rec
	return &copied, nil
}

func (s *MemoryRecordingStore) MarkEnded(ctx context.Context, id uuid.UUID, audioFilePath, transcription string) (*models.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Status = models.StatusEnded
	rec.AudioFilePath = &audioFilePath
	rec.TranscriptionText = &transcription
	rec.UpdatedAt = time.Now().UTC()
	copied := *rec
	return &copied, nil
}
