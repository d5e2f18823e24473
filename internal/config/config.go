package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/snowvesna25-sys/runspark-bot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken    string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath      string        `envconfig:"DB_PATH" default:"./data/runspark.db"`
	DatabaseURL string        `envconfig:"DATABASE_URL"` // Postgres journal instead of SQLite when set
	PromptAt    string        `envconfig:"PROMPT_AT" default:"04:00"`
	ReplyWindow time.Duration `envconfig:"REPLY_WINDOW" default:"15m"`
	WeatherURL  string        `envconfig:"WEATHER_URL" default:"https://api.open-meteo.com/v1/forecast"`
	TTSURL      string        `envconfig:"TTS_URL" default:"https://translate.google.com/translate_tts"`
	TTSLang     string        `envconfig:"TTS_LANG" default:"en"`
	Workers     int           `envconfig:"WORKERS" default:"16"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"json"` // json|console
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("BOT_TOKEN is empty")
	}
	if _, err := domain.ParseClock(c.PromptAt); err != nil {
		return fmt.Errorf("PROMPT_AT: %w", err)
	}
	if c.ReplyWindow <= 0 {
		return fmt.Errorf("REPLY_WINDOW must be positive, got %s", c.ReplyWindow)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

// PromptMinutes is PromptAt as minutes after local midnight.
// Only valid after Validate succeeded.
func (c Config) PromptMinutes() int {
	m, _ := domain.ParseClock(c.PromptAt)
	return m
}
