// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, fetch behavior, the source registry, and bot limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	errs "github.com/glebkhr/schedbot-go/internal/errors"
)

// Source describes one published spreadsheet a bot serves: a stable id used
// in callback data, a human label for menus, and the Google Sheets document
// id plus worksheet gid of the xlsx export.
type Source struct {
	ID      string
	Label   string
	SheetID string
	GID     string
}

// defaultSources is the compiled-in registry used when SCHEDBOT_SOURCES is
// not set.
var defaultSources = []Source{
	{
		ID:      "edu_1",
		Label:   "Факультет ФПМИ (3 курс)",
		SheetID: "14-YxxIaNrIohX5QwtQRgPARvj0LbMHLQ",
		GID:     "1243294014",
	},
}

// Config holds all application configuration
type Config struct {
	// Telegram Bot Configuration
	TelegramToken string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Source Registry
	Sources []Source

	// Fetch Configuration
	FetchTimeout    time.Duration
	FetchMaxRetries int

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Long polling
	PollTimeout time.Duration // Timeout for one getUpdates long poll

	// Telegram API Constraints
	MaxMessageRunes int // Maximum message length (Telegram API limit: 4096)

	// Working hours for the free-rooms query; outside them every room is
	// reported free without scanning.
	WorkdayStartHour int
	WorkdayEndHour   int
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	sources, err := parseSources(getEnv(EnvSources, ""))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		// Telegram Bot Configuration
		TelegramToken: getEnv(EnvTelegramToken, ""),

		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		// Source Registry
		Sources: sources,

		// Fetch Configuration
		FetchTimeout:    getDurationEnv(EnvFetchTimeout, 12*time.Second),
		FetchMaxRetries: getIntEnv(EnvFetchMaxRetries, 3),

		// Bot Configuration
		Bot: BotConfig{
			PollTimeout:      getDurationEnv(EnvBotPollTimeout, 30*time.Second),
			MaxMessageRunes:  getIntEnv(EnvBotMaxMessageRunes, 4096), // Telegram API limit
			WorkdayStartHour: 8,
			WorkdayEndHour:   21,
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" {
		errs = append(errs, errors.New(EnvTelegramToken+" is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("at least one source is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvFetchTimeout, c.FetchTimeout))
	}
	if c.FetchMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvFetchMaxRetries, c.FetchMaxRetries))
	}
	if c.Bot.PollTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvBotPollTimeout, c.Bot.PollTimeout))
	}
	if c.Bot.MaxMessageRunes <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvBotMaxMessageRunes, c.Bot.MaxMessageRunes))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SourceByID returns the registered source with the given id.
func (c *Config) SourceByID(id string) (Source, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// parseSources decodes the SCHEDBOT_SOURCES registry: entries separated by
// ";", each entry "id|label|sheetID|gid". An empty value yields the
// compiled-in default registry.
func parseSources(raw string) ([]Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		out := make([]Source, len(defaultSources))
		copy(out, defaultSources)
		return out, nil
	}

	var sources []Source
	seen := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: %s entry %q: want id|label|sheetID|gid", errs.ErrInvalidInput, EnvSources, entry)
		}
		s := Source{
			ID:      strings.TrimSpace(parts[0]),
			Label:   strings.TrimSpace(parts[1]),
			SheetID: strings.TrimSpace(parts[2]),
			GID:     strings.TrimSpace(parts[3]),
		}
		if s.ID == "" || s.Label == "" || s.SheetID == "" || s.GID == "" {
			return nil, fmt.Errorf("%w: %s entry %q: empty field", errs.ErrInvalidInput, EnvSources, entry)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s entry %q: duplicate id", errs.ErrInvalidInput, EnvSources, entry)
		}
		seen[s.ID] = struct{}{}
		sources = append(sources, s)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s is set but holds no entries", errs.ErrInvalidInput, EnvSources)
	}
	return sources, nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
