package config

import (
	"os"
)

type Config struct {
	ServerPort string
	JWTSecret  string
	// Client side
	ServerURL string
	Token     string
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		ServerURL:  getEnv("SERVER_URL", "http://localhost:8080"),
		Token:      getEnv("CHAT_TOKEN", ""),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
