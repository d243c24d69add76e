package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RELREPORTS_STORE_DSN.
const EnvPrefix = "RELREPORTS_"

type Config struct {
	Recipes        Database       `yaml:"recipes" envPrefix:"RECIPES_"`
	Store          Database       `yaml:"store" envPrefix:"STORE_"`
	Archive        Archive        `yaml:"archive" envPrefix:"ARCHIVE_"`
	ReportSettings ReportSettings `yaml:"report_settings" envPrefix:"REPORT_"`
}

// Database is the connection of one schema. The DSN is passed to the driver
// verbatim.
type Database struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

type Archive struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	URI      string `yaml:"uri" env:"URI"`
	Database string `yaml:"database" env:"DATABASE"`
}

type ReportSettings struct {
	Iterations       int `yaml:"iterations" env:"ITERATIONS"`
	TopCustomers     int `yaml:"top_customers" env:"TOP_CUSTOMERS"`
	RecentWindowDays int `yaml:"recent_window_days" env:"RECENT_WINDOW_DAYS"`
}

var (
	ErrMissingDriver = errors.New("driver is required")
	ErrMissingDSN    = errors.New("dsn is required")
)

// LoadConfig reads the YAML file at path, when path is not empty, and applies
// environment overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	config.ReportSettings.applyDefaults()
	return config, nil
}

// Validate checks that the connection can be attempted. The DSN itself is not
// inspected.
func (d Database) Validate(section string) error {
	if d.Driver == "" {
		return fmt.Errorf("%s: %w", section, ErrMissingDriver)
	}
	if d.DSN == "" {
		return fmt.Errorf("%s: %w", section, ErrMissingDSN)
	}
	return nil
}

func (a Archive) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.URI == "" || a.Database == "" {
		return errors.New("archive: uri and database are required when enabled")
	}
	return nil
}

func (s *ReportSettings) applyDefaults() {
	if s.Iterations < 1 {
		s.Iterations = 1
	}
	if s.TopCustomers < 1 {
		s.TopCustomers = 3
	}
	if s.RecentWindowDays < 1 {
		s.RecentWindowDays = 30
	}
}
