package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	PlotlyJSURL     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Report publishing (cmd/publish).
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is applied first; it never overrides
// variables that are already set.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:        strings.TrimSpace(sharedcfg.EnvOrDefault("DATA_PATH", "Merged_Incident_Reports.csv")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		PlotlyJSURL:     sharedcfg.EnvOrDefault("PLOTLY_JS_URL", "https://cdn.plot.ly/plotly-2.35.2.min.js"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "incident-report-tables"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "json", "text":
	default:
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}
