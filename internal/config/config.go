package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port                 string
	AllowedOrigins       []string
	LogLevel             string
	DatabaseURL          string
	DatabaseReadURL      string // Read replica URL for SELECT queries
	RedisURL             string
	RootViewpointGroupID string // Default network root when no group is requested
	Environment          string

	// Retry policy applied at the relation-store boundary
	StoreRetryAttempts  int
	StoreRetryBaseDelay time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		AllowedOrigins:       parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DatabaseReadURL:      getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:             getEnv("REDIS_URL", ""),
		RootViewpointGroupID: getEnv("ROOT_VIEWPOINT_GROUP_ID", ""),
		Environment:          getEnv("ENVIRONMENT", "production"),
		StoreRetryAttempts:   getIntEnv("STORE_RETRY_ATTEMPTS", 3),
		StoreRetryBaseDelay:  time.Duration(getIntEnv("STORE_RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
