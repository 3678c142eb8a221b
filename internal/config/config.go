// Package config provides configuration for the application.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port         int
	TemplateDir  string
	SecureCookie bool
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from the environment. A .env file is loaded
// first when present. DATABASE_URL is required; everything else has a
// default.
func Load() (*Config, error) {
	// A missing .env file is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	cfg.Database.URL = dbURL

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Server.Port = port

	cfg.Server.TemplateDir = os.Getenv("TEMPLATE_DIR")
	if cfg.Server.TemplateDir == "" {
		cfg.Server.TemplateDir = "web/templates"
	}

	cfg.Server.SecureCookie = os.Getenv("SECURE_COOKIE") == "true"

	cfg.Logging.Level = os.Getenv("LOG_LEVEL")
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
