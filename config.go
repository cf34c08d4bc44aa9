package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config is read from the environment.
type Config struct {
	Port         string
	PollInterval time.Duration
	LogLevel     slog.Level
	Gemini       GeminiConfig
}

// loadConfig reads the configuration through getenv (os.Getenv in main).
func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:         getenv("PORT"),
		PollInterval: defaultPollInterval,
		LogLevel:     slog.LevelInfo,
		Gemini: GeminiConfig{
			ProjectID: getenv("GCP_PROJECT_ID"),
			Region:    getenv("GCP_REGION"),
			Model:     getenv("GEMINI_MODEL"),
		},
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if v := getenv("CLOCK_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CLOCK_POLL_INTERVAL: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("CLOCK_POLL_INTERVAL: must be positive, got %s", d)
		}
		cfg.PollInterval = d
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}
