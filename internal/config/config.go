package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ad/go-contest-stats/internal/kilonova"
)

const (
	defaultDBPath          = "submissions.db"
	defaultCheckpointEvery = 1000
)

// Config is read from the environment; .env files are loaded by the binaries
// through godotenv/autoload.
type Config struct {
	DBPath          string
	API             kilonova.Config
	CheckpointEvery int
	ReportConfig    string
	BotToken        string
	ReportChatID    int64
}

func Load() (*Config, error) {
	cfg := &Config{
		DBPath:       getenv("DB_PATH", defaultDBPath),
		ReportConfig: os.Getenv("REPORT_CONFIG"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		API: kilonova.Config{
			BaseURL: getenv("API_URL", kilonova.DefaultURL),
		},
	}

	var err error
	if cfg.API.Limit, err = getenvInt("API_LIMIT", kilonova.DefaultLimit); err != nil {
		return nil, err
	}
	if cfg.API.ContestID, err = getenvInt64("API_CONTEST_ID", 0); err != nil {
		return nil, err
	}
	if cfg.API.ProblemID, err = getenvInt64("API_PROBLEM_ID", 0); err != nil {
		return nil, err
	}
	if cfg.API.RequestsPerSecond, err = getenvFloat("API_RPS", 2); err != nil {
		return nil, err
	}
	if cfg.CheckpointEvery, err = getenvInt("CHECKPOINT_EVERY", defaultCheckpointEvery); err != nil {
		return nil, err
	}
	if cfg.ReportChatID, err = getenvInt64("REPORT_CHAT_ID", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramEnabled reports whether reports should also go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.BotToken != "" && c.ReportChatID != 0
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
