package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at startup and
// never mutated afterwards.
type Config struct {
	ServerPort   int
	DatabasePath string

	// Classifier artifacts, loaded read-only at startup.
	ModelPath  string
	ScalerPath string

	// DecisionThreshold is the p1 cutoff for a positive prediction.
	// NOTE: the legacy deployment ran two prediction paths with diverging
	// cutoffs (0.5 and 0.45). There is exactly one path and one value now;
	// 0.5 is the default pending product sign-off on the 0.45 variant.
	DecisionThreshold float64

	JWTSecret     string
	TokenTTLHours int

	// AdminPassword seeds the bootstrap admin account on first startup.
	// Known insecure default; rotate out of band.
	AdminPassword string

	AppEnv string
}

// Load loads configuration from the environment (optionally seeded from a
// .env file) or sets defaults.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnv("PREDICT_THRESHOLD", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICT_THRESHOLD: %w", err)
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("PREDICT_THRESHOLD must be in (0, 1), got %v", threshold)
	}

	ttl, err := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_HOURS: %w", err)
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./medpredict.db"),
		ModelPath:         getEnv("MODEL_PATH", "./model.json"),
		ScalerPath:        getEnv("SCALER_PATH", "./scaler.json"),
		DecisionThreshold: threshold,
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTLHours:     ttl,
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),
		AppEnv:            getEnv("APP_ENV", "development"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
