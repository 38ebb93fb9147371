package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table: one row per external (Google) identity
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			google_id VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			display_name VARCHAR(255),
			avatar_url VARCHAR(512)
		)`,

		// Recordings table: capture sessions
		`CREATE TABLE IF NOT EXISTS recordings (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			audio_file_path VARCHAR(512),
			transcription_text TEXT,
			llm_provider VARCHAR(50) NOT NULL DEFAULT 'openai'
		)`,

		// Recording chunks table: immutable uploaded fragments.
		// seq preserves arrival order for duplicate chunk indices.
		`CREATE TABLE IF NOT EXISTS recording_chunks (
			id UUID PRIMARY KEY,
			seq BIGSERIAL,
			recording_id UUID NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			audio_blob_path VARCHAR(512) NOT NULL,
			duration_seconds DOUBLE PRECISION,
			uploaded_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_google_id ON users(google_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_user_id ON recordings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_created_at ON recordings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recording_chunks_recording_id ON recording_chunks(recording_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recording_chunks_order ON recording_chunks(recording_id, chunk_index, seq)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
