package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/target/mmk-event-browser/config"
)

// logLevel is shared by the default logger so the level can follow configuration
// loaded after the logger exists.
var logLevel = new(slog.LevelVar)

// InitLogger initializes the structured logger. Logs go to stderr because stdout
// carries the terminal UI.
func InitLogger() *slog.Logger {
	logLevel.Set(slog.LevelWarn)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// ApplyLogConfig adjusts the level of loggers created by InitLogger.
func ApplyLogConfig(cfg config.AppConfig) {
	level := cfg.Observability.Logging.SlogLevel()
	if cfg.IsDev && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	logLevel.Set(level)
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}
