package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DIGEST_TIME", "")
	t.Setenv("STATS_WINDOW_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "habit_tracker.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.DigestTime != "08:00" {
		t.Errorf("DigestTime = %q", cfg.DigestTime)
	}
	if cfg.StatsWindowDays != 30 {
		t.Errorf("StatsWindowDays = %d", cfg.StatsWindowDays)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without TELEGRAM_TOKEN")
	}
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "data/habits.db")
	t.Setenv("DIGEST_TIME", "21:30")
	t.Setenv("STATS_WINDOW_DAYS", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "data/habits.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.DigestTime != "21:30" {
		t.Errorf("DigestTime = %q", cfg.DigestTime)
	}
	if cfg.StatsWindowDays != 14 {
		t.Errorf("StatsWindowDays = %d", cfg.StatsWindowDays)
	}
}

func TestParseDaysRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "-5", "0"} {
		if got := parseDays(raw); got != 0 {
			t.Errorf("parseDays(%q) = %d, want 0", raw, got)
		}
	}
}
