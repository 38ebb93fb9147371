package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/middleware"
	"github.com/medvoice/medvoice-backend/internal/models"
	"github.com/medvoice/medvoice-backend/internal/services"
	"github.com/medvoice/medvoice-backend/internal/store"
)

// maxChunkUploadBytes bounds a single multipart chunk upload.
const maxChunkUploadBytes = 20 << 20 // 20MB

type chunkUploadResponse struct {
	Message    string    `json:"message"`
	ChunkID    uuid.UUID `json:"chunk_id"`
	ChunkIndex int       `json:"chunk_index"`
}

// ListRecordings returns all recordings owned by the current user, newest
// first.
func (h *Handler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
		return
	}

	recordings, err := h.Recordings.List(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to list recordings: %v", err)
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if recordings == nil {
		recordings = []*models.Recording{}
	}
	writeJSON(w, http.StatusOK, recordings)
}

// CreateRecording starts a new capture session with status=active.
func (h *Handler) CreateRecording(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
		return
	}

	recording, err := h.Recordings.Create(r.Context(), user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to create recording: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create recording")
		return
	}
	writeJSON(w, http.StatusCreated, recording)
}

// GetRecording returns a single recording owned by the current user.
func (h *Handler) GetRecording(w http.ResponseWriter, r *http.Request) {
	user, recordingID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	recording, err := h.Recordings.Get(r.Context(), recordingID, user.ID)
	if err != nil {
		h.recordingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recording)
}

// UploadChunk accepts a multipart form with an integer chunk_index field
// and an audio_chunk file part, persists the bytes and records chunk
// metadata.
func (h *Handler) UploadChunk(w http.ResponseWriter, r *http.Request) {
	user, recordingID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	// Ownership gate before any bytes are stored.
	if _, err := h.Recordings.Authorize(r.Context(), recordingID, user.ID); err != nil {
		h.recordingError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxChunkUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	index, err := strconv.Atoi(r.FormValue("chunk_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "chunk_index must be an integer")
		return
	}

	var duration *float64
	if v := r.FormValue("duration_seconds"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "duration_seconds must be a number")
			return
		}
		duration = &d
	}

	file, fileHeader, err := r.FormFile("audio_chunk")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio_chunk file provided")
		return
	}
	defer file.Close()

	chunk, err := h.Recordings.AddChunk(r.Context(), recordingID, index, fileHeader.Filename, file, duration)
	if err != nil {
		log.Printf("ERROR: Failed to store chunk for recording %s: %v", recordingID, err)
		writeError(w, http.StatusInternalServerError, "Failed to store chunk")
		return
	}

	writeJSON(w, http.StatusCreated, chunkUploadResponse{
		Message:    "Chunk uploaded successfully",
		ChunkID:    chunk.ID,
		ChunkIndex: chunk.ChunkIndex,
	})
}

// PauseRecording marks a recording paused. Pausing twice is a no-op.
func (h *Handler) PauseRecording(w http.ResponseWriter, r *http.Request) {
	user, recordingID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	recording, err := h.Recordings.Pause(r.Context(), recordingID, user.ID)
	if err != nil {
		h.recordingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Recording paused",
		"status":  recording.Status,
	})
}

// FinishRecording assembles the uploaded chunks, transcribes the artifact
// and returns the final recording representation.
func (h *Handler) FinishRecording(w http.ResponseWriter, r *http.Request) {
	user, recordingID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	recording, err := h.Recordings.Finish(r.Context(), recordingID, user.ID)
	if err != nil {
		h.recordingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recording)
}

// requestContext pulls the authenticated user and the recording id out of
// the request, rejecting malformed ids before anything else runs.
func (h *Handler) requestContext(w http.ResponseWriter, r *http.Request) (*models.User, uuid.UUID, bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
		return nil, uuid.Nil, false
	}

	recordingID, err := uuid.Parse(chi.URLParam(r, "recordingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recording id")
		return nil, uuid.Nil, false
	}
	return user, recordingID, true
}

// recordingError maps domain errors to their client-visible status.
// NotFound is reported before Forbidden by the authorization gate.
func (h *Handler) recordingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Recording not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized to access this recording")
	case errors.Is(err, services.ErrNoChunks):
		writeError(w, http.StatusBadRequest, "Recording has no chunks")
	default:
		log.Printf("ERROR: Recording operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process recording")
	}
}
