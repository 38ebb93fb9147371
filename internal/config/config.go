package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresURI string
	RedisURI    string

	JWTSecret string
	TokenTTL  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AudioStoragePath string

	TranscribeAPIKey   string
	TranscribeAPIURL   string
	TranscribeModel    string
	TranscribeProvider string

	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 24
	}

	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/medvoice?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		TokenTTL:  time.Duration(ttlHours) * time.Hour,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback"),

		AudioStoragePath: getEnv("AUDIO_STORAGE_PATH", "./audio_storage"),

		TranscribeAPIKey:   getEnv("TRANSCRIBE_API_KEY", ""),
		TranscribeAPIURL:   getEnv("TRANSCRIBE_API_URL", "https://api.openai.com/v1/audio/transcriptions"),
		TranscribeModel:    getEnv("TRANSCRIBE_MODEL", "whisper-1"),
		TranscribeProvider: getEnv("TRANSCRIBE_PROVIDER", "openai"),

		Port:           getEnv("PORT", "8080"),
		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,
		Environment:    env,
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
