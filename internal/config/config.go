package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Environment
	Environment string

	// Redis
	RedisURL      string
	RedisPassword string

	// Server
	Port string

	// Authentication (bulk stats export)
	JWTSecret string

	// Name resolution
	EnsResolverURL      string
	BasenameResolverURL string

	// Slot machine
	WinDifficulty uint64
	WinPayout     string
}

func Load() *Config {
	return &Config{
		// Environment
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Server
		Port: getEnvOrDefault("PORT", "8080"),

		// Authentication
		JWTSecret: getEnvOrDefault("JWT_SECRET", "gambly-stats-secret-key-change-in-production"),

		// Name resolution
		EnsResolverURL:      getEnvOrDefault("ENS_RESOLVER_URL", "https://api.ensdata.net"),
		BasenameResolverURL: getEnvOrDefault("BASENAME_RESOLVER_URL", "https://resolver-api.coinbase.com/v1/name"),

		// Slot machine
		WinDifficulty: getEnvUint("WIN_DIFFICULTY", 10),
		WinPayout:     getEnvOrDefault("WIN_PAYOUT", "50"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
