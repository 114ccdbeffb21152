package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer        string // Issuer claim for session tokens (default: tabnotes)
	DatabaseFile  string // Path to SQLite database file (default: ./notes.db)
	Env           string // Environment (dev, staging, prod) (default: dev)
	LogLevel      string // Log level (debug, info, warn, error) (default: info)
	LogFormat     string // Log format (json, text) (default: json)
	Port          int    // HTTP server port (default: 8080)
	FrontendURL   string // Base URL for invitation links (default: http://localhost:3000)
	AdminKey      string // Optional: shared key for maintenance endpoints; empty disables them
	FreeNoteLimit int    // Note cap on the free plan (default: 3)

	SessionTTL           time.Duration // Session token lifetime (default: 7 days)
	InviteTTL            time.Duration // Invitation lifetime (default: 7 days)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired invitation sweep interval (default: 1h)
}

func LoadConfig() Config {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	return Config{
		Issuer:        getEnvOrDefault("NOTES_ISSUER", "tabnotes"),
		DatabaseFile:  getEnvOrDefault("NOTES_DATABASE_FILE", "notes.db"),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
		Port:          getEnvIntOrDefault("PORT", 8080),
		FrontendURL:   getEnvOrDefault("NOTES_FRONTEND_URL", "http://localhost:3000"),
		AdminKey:      os.Getenv("NOTES_ADMIN_KEY"),
		FreeNoteLimit: getEnvIntOrDefault("NOTES_FREE_NOTE_LIMIT", 3),

		SessionTTL:           getEnvDurationOrDefault("NOTES_SESSION_TTL", 7*24*time.Hour),
		InviteTTL:            getEnvDurationOrDefault("NOTES_INVITE_TTL", 7*24*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
