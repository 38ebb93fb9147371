package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordingStatus is the lifecycle state of a recording session.
// Transitions: active ⇄ paused any number of times, then ended (terminal).
type RecordingStatus string

const (
	StatusActive RecordingStatus = "active"
	StatusPaused RecordingStatus = "paused"
	StatusEnded  RecordingStatus = "ended"
)

type Recording struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status            RecordingStatus `json:"status"`
	AudioFilePath     *string         `json:"audio_file_path"`
	TranscriptionText *string         `json:"transcription_text"`
	Provider          string          `json:"llm_provider"`
}
