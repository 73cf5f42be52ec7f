package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken   string
	DatabaseURL     string
	DigestTime      string // HH:MM, local time
	StatsWindowDays int
}

// Load reads configuration from the environment (and an optional .env file)
// with sane defaults.
func Load() (Config, error) {
	// A missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DigestTime:      strings.TrimSpace(os.Getenv("DIGEST_TIME")),
		StatsWindowDays: parseDays(strings.TrimSpace(os.Getenv("STATS_WINDOW_DAYS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "habit_tracker.db"
	}
	if cfg.DigestTime == "" {
		cfg.DigestTime = "08:00"
	}
	if cfg.StatsWindowDays == 0 {
		cfg.StatsWindowDays = 30
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseDays(raw string) int {
	if raw == "" {
		return 0
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0
	}
	return days
}
