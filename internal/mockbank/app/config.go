package app

import (
	"os"
	"strconv"
	"time"

	"github.com/ledgerlane/comdirect/internal/mockbank/domain"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	DatabaseFile        string        // Path to SQLite database file (default: ./mockbank.db)

	Issuer     string        // Issuer claim for access tokens (default: mockbank)
	JWTSecret  string        // HS256 signing secret; generated at startup if empty
	AccessTTL  time.Duration // Access token lifetime (default: 10m)
	RefreshTTL time.Duration // Refresh token lifetime (default: 24h)

	ClientID     string // OAuth client id the bank accepts
	ClientSecret string // OAuth client secret
	Username     string // The single configured user
	Password     string // That user's plaintext password (hashed at startup)

	TANKind         string        // TAN kind for new challenges (default: P_TAN_PUSH)
	TANApproveDelay time.Duration // Push challenge self-approval delay (default: 3s)
	ChallengeTTL    time.Duration // Challenge validity window (default: 2m)
	TANSecret       string        // Optional TOTP secret gating manual approval
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		DatabaseFile:        getEnvOrDefault("MOCKBANK_DATABASE_FILE", "mockbank.db"),

		Issuer:     getEnvOrDefault("MOCKBANK_ISSUER", "mockbank"),
		JWTSecret:  os.Getenv("MOCKBANK_JWT_SECRET"),
		AccessTTL:  getEnvDurationOrDefault("MOCKBANK_ACCESS_TTL", 10*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("MOCKBANK_REFRESH_TTL", 24*time.Hour),

		ClientID:     getEnvOrDefault("MOCKBANK_CLIENT_ID", "User_XXXXXXXXXXXXXXXXXXXX"),
		ClientSecret: getEnvOrDefault("MOCKBANK_CLIENT_SECRET", "changeme-client-secret"),
		Username:     getEnvOrDefault("MOCKBANK_USERNAME", "testuser"),
		Password:     getEnvOrDefault("MOCKBANK_PASSWORD", "testpassword"),

		TANKind:         getEnvOrDefault("MOCKBANK_TAN_KIND", domain.TANKindPush),
		TANApproveDelay: getEnvDurationOrDefault("MOCKBANK_TAN_APPROVE_DELAY", 3*time.Second),
		ChallengeTTL:    getEnvDurationOrDefault("MOCKBANK_CHALLENGE_TTL", 2*time.Minute),
		TANSecret:       os.Getenv("MOCKBANK_TAN_SECRET"),
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
