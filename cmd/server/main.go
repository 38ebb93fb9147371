package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/medvoice/medvoice-backend/internal/config"
	"github.com/medvoice/medvoice-backend/internal/database"
	"github.com/medvoice/medvoice-backend/internal/handlers"
	"github.com/medvoice/medvoice-backend/internal/middleware"
	"github.com/medvoice/medvoice-backend/internal/routes"
	"github.com/medvoice/medvoice-backend/internal/services"
	"github.com/medvoice/medvoice-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Println("⚠️  WARNING: JWT_SECRET is the default value. Set a strong secret in production.")
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Println("⚠️  WARNING: Google OAuth credentials not set. Login will not be available.")
	}
	if cfg.TranscribeAPIKey == "" {
		log.Println("⚠️  WARNING: TRANSCRIBE_API_KEY not set. Finishing recordings will fail.")
	}

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Ensure audio storage directory exists
	if err := os.MkdirAll(cfg.AudioStoragePath, 0o755); err != nil {
		log.Fatal("Failed to create audio storage directory:", err)
	}
	log.Printf("✅ Audio storage at %s", cfg.AudioStoragePath)

	// Wire stores and services
	userStore := store.NewPostgresUserStore(database.PostgresDB)
	recordingStore := store.NewPostgresRecordingStore(database.PostgresDB)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	auth := services.NewAuthService(userStore)
	assembler := services.NewAssembler(recordingStore, cfg.AudioStoragePath)
	transcriber := services.NewWhisperTranscriber(cfg.TranscribeAPIKey, cfg.TranscribeAPIURL, cfg.TranscribeModel)
	recordings := services.NewRecordingService(recordingStore, assembler, transcriber, cfg.TranscribeProvider, cfg.AudioStoragePath)

	h := &handlers.Handler{
		Users:       userStore,
		Auth:        auth,
		Tokens:      tokens,
		Recordings:  recordings,
		OAuth:       services.NewGoogleOAuth(cfg),
		FrontendURL: cfg.FrontendURL,
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: security headers + in-process per-IP rate limiting.
	// Non-production: Redis-based rate limit only.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, h, middleware.RequireUser(tokens, userStore))

	// Log registered routes for debugging
	log.Println("📋 Registered routes:")
	log.Println("  GET   /health")
	log.Println("  GET   /auth/google/login")
	log.Println("  GET   /auth/google/callback")
	log.Println("  GET   /auth/verify")
	log.Println("  GET   /api/recordings")
	log.Println("  POST  /api/recordings")
	log.Println("  GET   /api/recordings/{recordingID}")
	log.Println("  POST  /api/recordings/{recordingID}/chunks")
	log.Println("  PATCH /api/recordings/{recordingID}/pause")
	log.Println("  POST  /api/recordings/{recordingID}/finish")

	log.Printf("🚀 MedVoice backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
