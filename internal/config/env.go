// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Core (Required)
	EnvTelegramToken = "SCHEDBOT_TELEGRAM_TOKEN"

	// Server
	EnvPort            = "SCHEDBOT_PORT"
	EnvLogLevel        = "SCHEDBOT_LOG_LEVEL"
	EnvShutdownTimeout = "SCHEDBOT_SHUTDOWN_TIMEOUT"

	// Sources
	EnvSources = "SCHEDBOT_SOURCES"

	// Fetch
	EnvFetchTimeout    = "SCHEDBOT_FETCH_TIMEOUT"
	EnvFetchMaxRetries = "SCHEDBOT_FETCH_MAX_RETRIES"

	// Bot
	EnvBotPollTimeout     = "SCHEDBOT_BOT_POLL_TIMEOUT"
	EnvBotMaxMessageRunes = "SCHEDBOT_BOT_MAX_MESSAGE_RUNES"
)
