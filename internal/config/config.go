package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken         string
	DiscordApplicationID string

	// Database
	DatabasePath string

	// Polling
	PollIntervalMinutes int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:         os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
		DatabasePath:         getEnvOrDefault("DATABASE_PATH", "./data/freegs.db"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse poll interval
	intervalStr := getEnvOrDefault("POLL_INTERVAL_MINUTES", "60")
	interval, err := strconv.Atoi(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL_MINUTES: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MINUTES must be positive, got %d", interval)
	}
	cfg.PollIntervalMinutes = interval

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
