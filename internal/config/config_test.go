package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token123")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("POLL_INTERVAL_MINUTES", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DiscordToken != "token123" {
		t.Errorf("DiscordToken = %q", cfg.DiscordToken)
	}
	if cfg.DatabasePath != "./data/freegs.db" {
		t.Errorf("DatabasePath = %q, want default", cfg.DatabasePath)
	}
	if cfg.PollIntervalMinutes != 60 {
		t.Errorf("PollIntervalMinutes = %d, want 60", cfg.PollIntervalMinutes)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want missing-token error")
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token123")

	for _, bad := range []string{"abc", "0", "-5"} {
		t.Setenv("POLL_INTERVAL_MINUTES", bad)
		if _, err := Load(); err == nil {
			t.Errorf("Load() with POLL_INTERVAL_MINUTES=%q: error = nil, want error", bad)
		}
	}
}
