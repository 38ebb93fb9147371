package models

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is one uploaded audio fragment. Chunks are immutable once stored
// and are ordered by ChunkIndex at assembly time, not by upload time.
type Chunk struct {
	ID          uuid.UUID `json:"id"`
	RecordingID uuid.UUID `json:"recording_id"`
	ChunkIndex  int       `json:"chunk_index"`
	BlobPath    string    `json:"-"`
	Duration    *float64  `json:"duration_seconds,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
