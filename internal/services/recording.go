package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/models"
	"github.com/medvoice/medvoice-backend/internal/store"
)

// ErrForbidden is returned when a valid user acts on a recording owned by
// someone else.
var ErrForbidden = errors.New("recording belongs to another user")

// RecordingService drives the recording lifecycle: create, pause, chunk
// upload, and finish (assemble + transcribe + persist).
type RecordingService struct {
	recordings  store.RecordingStore
	assembler   *Assembler
	transcriber Transcriber
	provider    string
	storagePath string

	mu        sync.Mutex
	finishing map[uuid.UUID]*sync.Mutex
}

func NewRecordingService(recordings store.RecordingStore, assembler *Assembler, transcriber Transcriber, provider, storagePath string) *RecordingService {
	return &RecordingService{
		recordings:  recordings,
		assembler:   assembler,
		transcriber: transcriber,
		provider:    provider,
		storagePath: storagePath,
		finishing:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// Authorize loads a recording and checks ownership. NotFound is reported
// before Forbidden so an unauthorized caller learns nothing beyond the
// resource's existence check. Every per-recording endpoint goes through
// this single gate.
func (s *RecordingService) Authorize(ctx context.Context, recordingID, requesterID uuid.UUID) (*models.Recording, error) {
	rec, err := s.recordings.Get(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != requesterID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func (s *RecordingService) Create(ctx context.Context, userID uuid.UUID) (*models.Recording, error) {
	return s.recordings.Create(ctx, userID, s.provider)
}

func (s *RecordingService) Get(ctx context.Context, recordingID, requesterID uuid.UUID) (*models.Recording, error) {
	return s.Authorize(ctx, recordingID, requesterID)
}

func (s *RecordingService) List(ctx context.Context, userID uuid.UUID) ([]*models.Recording, error) {
	return s.recordings.ListByUser(ctx, userID)
}

// Pause marks a recording paused. The transition is idempotent: pausing an
// already paused (or even ended) recording succeeds and sets status=paused.
func (s *RecordingService) Pause(ctx context.Context, recordingID, requesterID uuid.UUID) (*models.Recording, error) {
	if _, err := s.Authorize(ctx, recordingID, requesterID); err != nil {
		return nil, err
	}
	return s.recordings.MarkPaused(ctx, recordingID)
}

// AddChunk stores the chunk bytes under the recording's blob directory and
// records its metadata. Chunk indices are caller-supplied and are not
// required to be contiguous or unique; duplicates are kept as-is.
func (s *RecordingService) AddChunk(ctx context.Context, recordingID uuid.UUID, index int, filename string, content io.Reader, duration *float64) (*models.Chunk, error) {
	dir := filepath.Join(s.storagePath, "chunks", recordingID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	blobPath := filepath.Join(dir, fmt.Sprintf("chunk_%d_%s", index, filepath.Base(filename)))
	f, err := os.Create(blobPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	chunk := &models.Chunk{
		ID:          uuid.New(),
		RecordingID: recordingID,
		ChunkIndex:  index,
		BlobPath:    blobPath,
		Duration:    duration,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.recordings.AddChunk(ctx, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}

// Finish assembles the recording's chunks, transcribes the artifact and
// persists status=ended with the artifact path and transcription text. Any
// failure aborts the whole operation with no state change. Concurrent
// finishes of the same recording are serialized per recording id so two
// assemblies never interleave on the same artifact path.
func (s *RecordingService) Finish(ctx context.Context, recordingID, requesterID uuid.UUID) (*models.Recording, error) {
	if _, err := s.Authorize(ctx, recordingID, requesterID); err != nil {
		return nil, err
	}

	lock := s.finishLock(recordingID)
	lock.Lock()
	defer lock.Unlock()

	audioPath, err := s.assembler.Assemble(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	text, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe recording %s: %w", recordingID, err)
	}

	return s.recordings.MarkEnded(ctx, recordingID, audioPath, text)
}

func (s *RecordingService) finishLock(recordingID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.finishing[recordingID]
	if !ok {
		lock = &sync.Mutex{}
		s.finishing[recordingID] = lock
	}
	return lock
}
