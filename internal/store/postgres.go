package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/medvoice/medvoice-backend/internal/models"
)

// PostgresUserStore implements UserStore over database/sql + lib/pq.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, google_id, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.CreatedAt, user.UpdatedAt, user.GoogleID, user.Email, user.DisplayName, user.AvatarURL)
	return err
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, google_id, email, display_name, avatar_url
		FROM users WHERE id = $1
	`, id))
}

func (s *PostgresUserStore) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, google_id, email, display_name, avatar_url
		FROM users WHERE google_id = $1
	`, googleID))
}

func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, email, displayName, avatarURL string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET email = $2, display_name = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, created_at, updated_at, google_id, email, display_name, avatar_url
	`, id, email, displayName, avatarURL, time.Now().UTC())
	return s.scanUser(row)
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var displayName, avatarURL sql.NullString
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.GoogleID, &u.Email, &displayName, &avatarURL)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.DisplayName = displayName.String
	u.AvatarURL = avatarURL.String
	return &u, nil
}

// PostgresRecordingStore implements RecordingStore over database/sql + lib/pq.
type PostgresRecordingStore struct {
	db *sql.DB
}

func NewPostgresRecordingStore(db *sql.DB) *PostgresRecordingStore {
	return &PostgresRecordingStore{db: db}
}

const recordingColumns = `id, user_id, created_at, updated_at, status, audio_file_path, transcription_text, llm_provider`

func (s *PostgresRecordingStore) Create(ctx context.Context, userID uuid.UUID, provider string) (*models.Recording, error) {
	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO recordings (id, user_id, created_at, updated_at, status, llm_provider)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+recordingColumns+`
	`, uuid.New(), userID, now, now, models.StatusActive, provider)
	return s.scanRecording(row)
}

func (s *PostgresRecordingStore) Get(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	return s.scanRecording(s.db.QueryRowContext(ctx, `
		SELECT `+recordingColumns+` FROM recordings WHERE id = $1
	`, id))
}

func (s *PostgresRecordingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Recording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordingColumns+` FROM recordings
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []*models.Recording
	for rows.Next() {
		rec, err := s.scanRecordingRows(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

func (s *PostgresRecordingStore) AddChunk(ctx context.Context, chunk *models.Chunk) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recording_chunks (id, recording_id, chunk_index, audio_blob_path, duration_seconds, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, chunk.ID, chunk.RecordingID, chunk.ChunkIndex, chunk.BlobPath, chunk.Duration, chunk.UploadedAt)
	return err
}

func (s *PostgresRecordingStore) Chunks(ctx context.Context, recordingID uuid.UUID) ([]*models.Chunk, error) {
	// seq breaks ties between duplicate chunk indices in insertion order.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recording_id, chunk_index, audio_blob_path, duration_seconds, uploaded_at
		FROM recording_chunks
		WHERE recording_id = $1 ORDER BY chunk_index ASC, seq ASC
	`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		var c models.Chunk
		var duration sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.RecordingID, &c.ChunkIndex, &c.BlobPath, &duration, &c.UploadedAt); err != nil {
			return nil, err
		}
		if duration.Valid {
			c.Duration = &duration.Float64
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

func (s *PostgresRecordingStore) MarkPaused(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE recordings SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+recordingColumns+`
	`, id, models.StatusPaused, time.Now().UTC())
	return s.scanRecording(row)
}

func (s *PostgresRecordingStore) MarkEnded(ctx context.Context, id uuid.UUID, audioFilePath, transcription string) (*models.Recording, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE recordings SET status = $2, audio_file_path = $3, transcription_text = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+recordingColumns+`
	`, id, models.StatusEnded, audioFilePath, transcription, time.Now().UTC())
	return s.scanRecording(row)
}

func (s *PostgresRecordingStore) scanRecording(row *sql.Row) (*models.Recording, error) {
	var rec models.Recording
	var audioPath, transcription sql.NullString
	err := row.Scan(&rec.ID, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Status, &audioPath, &transcription, &rec.Provider)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if audioPath.Valid {
		rec.AudioFilePath = &audioPath.String
	}
	if transcription.Valid {
		rec.TranscriptionText = &transcription.String
	}
	return &rec, nil
}

func (s *PostgresRecordingStore) scanRecordingRows(rows *sql.Rows) (*models.Recording, error) {
	var rec models.Recording
	var audioPath, transcription sql.NullString
	err := rows.Scan(&rec.ID, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Status, &audioPath, &transcription, &rec.Provider)
	if err != nil {
		return nil, err
	}
	if audioPath.Valid {
		rec.AudioFilePath = &audioPath.String
	}
	if transcription.Valid {
		rec.TranscriptionText = &transcription.String
	}
	return &rec, nil
}
