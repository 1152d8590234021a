package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	TelegramChatID   int64
	DatabaseURL      string
	RedisURL         string

	PolygonAPIKey string
	XBearerToken  string
	NewsAPIKey    string
	APIKey        string

	ScanIntervalMins int
	ScanUniverse     []string
	TickerPauseMs    int

	OpenAIAPIKey      string
	OpenAIModel       string
	AdvisorMaxHistory int

	SSHPort        int
	SSHHostKeyPath string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		PolygonAPIKey:    os.Getenv("POLYGON_API_KEY"),
		XBearerToken:     os.Getenv("X_BEARER_TOKEN"),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.PolygonAPIKey == "" {
		log.Println("Warning: POLYGON_API_KEY not set, institutional data will be unavailable")
	}
	if cfg.XBearerToken == "" {
		log.Println("Warning: X_BEARER_TOKEN not set, social signals will be unavailable")
	}
	if cfg.NewsAPIKey == "" {
		log.Println("Warning: NEWS_API_KEY not set, news signals will be unavailable")
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	cfg.ScanIntervalMins = 30
	if v := strings.TrimSpace(os.Getenv("SCAN_INTERVAL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScanIntervalMins = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("SCAN_UNIVERSE")); v != "" {
		for _, ticker := range strings.Split(v, ",") {
			if t := strings.TrimSpace(ticker); t != "" {
				cfg.ScanUniverse = append(cfg.ScanUniverse, t)
			}
		}
	}

	cfg.TickerPauseMs = 500
	if v := strings.TrimSpace(os.Getenv("TICKER_PAUSE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TickerPauseMs = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, advisor will be disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.AdvisorMaxHistory = 20
	if v := os.Getenv("ADVISOR_MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AdvisorMaxHistory = n
		}
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/runradar_host_key"
	}

	return cfg
}
