package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvoice/medvoice-backend/internal/models"
	"github.com/medvoice/medvoice-backend/internal/store"
)

type stubTranscriber struct {
	text  string
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func newTestRecordingService(t *testing.T, transcriber Transcriber) (*RecordingService, *store.MemoryRecordingStore) {
	t.Helper()
	dir := t.TempDir()
	recordings := store.NewMemoryRecordingStore()
	assembler := NewAssembler(recordings, dir)
	return NewRecordingService(recordings, assembler, transcriber, "openai", dir), recordings
}

func TestCreateRecordingStartsActive(t *testing.T) {
	svc, _ := newTestRecordingService(t, &stubTranscriber{})

	rec, err := svc.Create(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, "openai", rec.Provider)
	assert.Nil(t, rec.AudioFilePath)
	assert.Nil(t, rec.TranscriptionText)
}

func TestPauseIsIdempotent(t *testing.T) {
	svc, _ := newTestRecordingService(t, &stubTranscriber{})
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	paused, err := svc.Pause(ctx, rec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, paused.Status)

	// Pausing again is a no-op, not an error.
	paused, err = svc.Pause(ctx, rec.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, paused.Status)
}

func TestPauseRejectsNonOwner(t *testing.T) {
	svc, recordings := newTestRecordingService(t, &stubTranscriber{})
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.Pause(ctx, rec.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	// No state mutation happened.
	stored, err := recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestPauseUnknownRecording(t *testing.T) {
	svc, _ := newTestRecordingService(t, &stubTranscriber{})

	_, err := svc.Pause(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddChunkStoresBlobAndMetadata(t *testing.T) {
	svc, recordings := newTestRecordingService(t, &stubTranscriber{})
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	duration := 4.2
	chunk, err := svc.AddChunk(ctx, rec.ID, 3, "part.webm", bytes.NewReader([]byte("fragment")), &duration)
	require.NoError(t, err)

	assert.Equal(t, 3, chunk.ChunkIndex)
	assert.Equal(t, "chunk_3_part.webm", filepath.Base(chunk.BlobPath))

	got, err := os.ReadFile(chunk.BlobPath)
	require.NoError(t, err)
	assert.Equal(t, "fragment", string(got))

	chunks, err := recordings.Chunks(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.NotNil(t, chunks[0].Duration)
	assert.Equal(t, 4.2, *chunks[0].Duration)
}

func TestFinishAssemblesTranscribesAndPersists(t *testing.T) {
	transcriber := &stubTranscriber{text: "hello world"}
	svc, _ := newTestRecordingService(t, transcriber)
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.AddChunk(ctx, rec.ID, 0, "part.webm", bytes.NewReader([]byte("raw-audio")), nil)
	require.NoError(t, err)

	finished, err := svc.Finish(ctx, rec.ID, owner)
	require.NoError(t, err)

	assert.Equal(t, models.StatusEnded, finished.Status)
	require.NotNil(t, finished.TranscriptionText)
	assert.Equal(t, "hello world", *finished.TranscriptionText)
	require.NotNil(t, finished.AudioFilePath)

	artifact, err := os.ReadFile(*finished.AudioFilePath)
	require.NoError(t, err)
	assert.Equal(t, "raw-audio", string(artifact))
	assert.Equal(t, 1, transcriber.calls)
}

func TestFinishEmptyRecording(t *testing.T) {
	transcriber := &stubTranscriber{text: "unused"}
	svc, recordings := newTestRecordingService(t, transcriber)
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, rec.ID, owner)
	assert.ErrorIs(t, err, ErrNoChunks)
	assert.Equal(t, 0, transcriber.calls)

	stored, err := recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestFinishProviderFailureLeavesStateUnchanged(t *testing.T) {
	transcriber := &stubTranscriber{err: errors.New("provider unavailable")}
	svc, recordings := newTestRecordingService(t, transcriber)
	ctx := context.Background()
	owner := uuid.New()

	rec, err := svc.Create(ctx, owner)
	require.NoError(t, err)

	_, err = svc.AddChunk(ctx, rec.ID, 0, "part.webm", bytes.NewReader([]byte("raw-audio")), nil)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, rec.ID, owner)
	require.Error(t, err)

	// Status never partially transitions to ended.
	stored, err := recordings.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
	assert.Nil(t, stored.TranscriptionText)
	assert.Nil(t, stored.AudioFilePath)
}

func TestFinishRejectsNonOwner(t *testing.T) {
	transcriber := &stubTranscriber{text: "unused"}
	svc, _ := newTestRecordingService(t, transcriber)
	ctx := context.Background()

	rec, err := svc.Create(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.Finish(ctx, rec.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, transcriber.calls)
}

func TestListReturnsOnlyOwnRecordings(t *testing.T) {
	svc, _ := newTestRecordingService(t, &stubTranscriber{})
	ctx := context.Background()
	owner := uuid.New()

	first, err := svc.Create(ctx, owner)
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New())
	require.NoError(t, err)

	recordings, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, first.ID, recordings[0].ID)
}
