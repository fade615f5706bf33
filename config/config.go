// Package config reads service settings from the environment, optionally
// seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/warp/hiring-engine/hiring"
)

// DefaultEnvFiles are loaded by Load when present in the working directory.
var DefaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	Port    int    `env:"HIRING_PORT" envDefault:"8080"`
	DBPath  string `env:"HIRING_DB_PATH" envDefault:"hiring.db"`
	LogMode string `env:"HIRING_LOG_MODE" envDefault:"development"`

	CORSOrigins []string `env:"HIRING_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`

	DefaultYear    int   `env:"HIRING_DEFAULT_YEAR" envDefault:"2021"`
	MaxUploadBytes int64 `env:"HIRING_MAX_UPLOAD_BYTES" envDefault:"33554432"`

	ShutdownTimeout time.Duration `env:"HIRING_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	ReadTimeout     time.Duration `env:"HIRING_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HIRING_WRITE_TIMEOUT" envDefault:"15s"`
}

// LoadEnv loads the env files that exist and returns how many were read.
// Variables already set in the process environment win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads envFiles (DefaultEnvFiles when none are given), then parses
// and validates the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("HIRING_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("HIRING_DB_PATH must not be empty"))
	}
	if err := hiring.ValidateYear(c.DefaultYear); err != nil {
		errs = append(errs, fmt.Errorf("HIRING_DEFAULT_YEAR: %w", err))
	}
	if c.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Errorf("HIRING_MAX_UPLOAD_BYTES must not be negative, got %d", c.MaxUploadBytes))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HIRING_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
