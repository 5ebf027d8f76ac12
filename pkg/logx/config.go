package logx

import (
	"os"
	"strings"
	"time"
)

// Format is the output encoding
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds the logger configuration
type Config struct {
	Level  Level
	Format Format

	// EnableCaller adds file:line to each entry
	EnableCaller bool

	// File is an optional rotatelogs pattern, e.g. "./logs/staffhub.%Y%m%d.log".
	// Entries still go to stdout when it is set.
	File         string
	MaxAge       time.Duration
	RotationTime time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Level:        LevelInfo,
		Format:       FormatConsole,
		MaxAge:       7 * 24 * time.Hour,
		RotationTime: 24 * time.Hour,
	}
}

// LoadFromEnv loads configuration from LOG_* environment variables
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = ParseLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		cfg.Format = FormatJSON
	}

	if caller := os.Getenv("LOG_CALLER"); caller != "" {
		cfg.EnableCaller = strings.ToLower(caller) == "true" || caller == "1"
	}

	cfg.File = os.Getenv("LOG_FILE")

	if d, err := time.ParseDuration(os.Getenv("LOG_MAX_AGE")); err == nil {
		cfg.MaxAge = d
	}
	if d, err := time.ParseDuration(os.Getenv("LOG_ROTATION_TIME")); err == nil {
		cfg.RotationTime = d
	}

	return cfg
}
