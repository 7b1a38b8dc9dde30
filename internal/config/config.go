// Package config loads medivault settings.
//
// Precedence, lowest first: built-in defaults, the optional YAML file, then
// environment variables prefixed with MEDIVAULT_ (e.g. MEDIVAULT_DB_PATH).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/roach88/medivault/internal/logger"
	"github.com/roach88/medivault/internal/store"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "MEDIVAULT"

// Config holds settings for the store, the analysis client and logging.
type Config struct {
	DBPath   string `yaml:"db_path" envconfig:"DB_PATH"`
	DBDriver string `yaml:"db_driver" envconfig:"DB_DRIVER"`

	AnalysisURL     string        `yaml:"analysis_url" envconfig:"ANALYSIS_URL"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" envconfig:"ANALYSIS_TIMEOUT"`

	// Categories are the known labels offered to the analysis service.
	Categories         []string `yaml:"categories" envconfig:"CATEGORIES"`
	AllowNewCategories bool     `yaml:"allow_new_categories" envconfig:"ALLOW_NEW_CATEGORIES"`

	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:             "medivault.db",
		DBDriver:           store.DriverCGo,
		AnalysisURL:        "http://localhost:8000",
		AnalysisTimeout:    60 * time.Second,
		AllowNewCategories: true,
		LogLevel:           "info",
		LogFormat:          logger.FormatConsole,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile overlays the keys present in a YAML file. Unknown keys are
// rejected so typos surface instead of silently using defaults.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return nil
}

// Validate rejects settings the rest of the program cannot honor.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch c.DBDriver {
	case store.DriverCGo, store.DriverPure:
	default:
		return fmt.Errorf("unsupported db_driver %q: must be %q or %q", c.DBDriver, store.DriverCGo, store.DriverPure)
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("analysis_timeout must be positive, got %s", c.AnalysisTimeout)
	}
	switch c.LogFormat {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}
	return nil
}
