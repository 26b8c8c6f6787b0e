package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// config is read from the environment, optionally seeded from a .env file.
type config struct {
	DBURL    string // empty runs on the in-memory store
	Port     string
	Location *time.Location // reference timezone for calendar days
	LogLevel string
	GinMode  string
}

// loadConfig loads .env if present (real env vars win) and reads settings.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		DBURL:    os.Getenv("DB_URL"),
		Port:     getenv("PORT", "3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		GinMode:  os.Getenv("GIN_MODE"),
	}

	tz := getenv("TRACKER_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return config{}, fmt.Errorf("invalid TRACKER_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds a zap logger. "debug" switches to the development
// encoder; other values set the level of the production JSON logger.
func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}
