package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SCAN_INTERVAL_MINS", "")
	t.Setenv("TICKER_PAUSE_MS", "")
	t.Setenv("SCAN_UNIVERSE", "")

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.ScanIntervalMins != 30 {
		t.Fatalf("expected default scan interval 30, got %d", cfg.ScanIntervalMins)
	}
	if cfg.TickerPauseMs != 500 {
		t.Fatalf("expected default ticker pause 500, got %d", cfg.TickerPauseMs)
	}
	if len(cfg.ScanUniverse) != 0 {
		t.Fatalf("expected empty scan universe, got %v", cfg.ScanUniverse)
	}
	if cfg.SSHPort != 2222 {
		t.Fatalf("expected default ssh port 2222, got %d", cfg.SSHPort)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("SCAN_INTERVAL_MINS", "15")
	t.Setenv("SCAN_UNIVERSE", "aapl, msft ,TSLA")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TelegramChatID != 12345 {
		t.Fatalf("expected chat id 12345, got %d", cfg.TelegramChatID)
	}
	if cfg.ScanIntervalMins != 15 {
		t.Fatalf("expected scan interval 15, got %d", cfg.ScanIntervalMins)
	}
	if len(cfg.ScanUniverse) != 3 || cfg.ScanUniverse[2] != "TSLA" {
		t.Fatalf("unexpected scan universe: %v", cfg.ScanUniverse)
	}

	t.Setenv("SCAN_INTERVAL_MINS", "bad")
	cfg = Load()
	if cfg.ScanIntervalMins != 30 {
		t.Fatalf("invalid scan interval should fall back to default, got %d", cfg.ScanIntervalMins)
	}
}
