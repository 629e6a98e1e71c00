package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/backend/imagefile"
)

// Database selects the run journal; an empty Type disables it
type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type ServiceConfig struct {
	Port              int      `yaml:"port"`
	LogLevel          string   `yaml:"logLevel"`
	LogFormat         string   `yaml:"logFormat"`
	Workers           int      `yaml:"workers"`
	JPEGQuality       int      `yaml:"jpegQuality"`
	Acceptance        *float64 `yaml:"acceptance"`
	SVGFallbackWidth  int      `yaml:"svgFallbackWidth"`
	SVGFallbackHeight int      `yaml:"svgFallbackHeight"`
	MaxPixels         int      `yaml:"maxPixels"`
	Database          Database `yaml:"database"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:              8080,
		LogLevel:          "info",
		LogFormat:         "text",
		JPEGQuality:       imagefile.DefaultJPEGQuality,
		SVGFallbackWidth:  800,
		SVGFallbackHeight: 600,
		MaxPixels:         imagefile.DefaultMaxPixels,
	}
}

// LoadConfig loads configuration from the specified YAML file.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to
// DefaultConfig when the file does not exist
func LoadConfigOrDefault(configPath string) (*ServiceConfig, error) {
	config, err := LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", configPath)
		return DefaultConfig(), nil
	}
	return config, err
}

// Validate checks value ranges
func (c *ServiceConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Port)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpegQuality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("maxPixels must be positive, got %d", c.MaxPixels)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat)
	}
	if err := c.DefaultArgs().Validate(); err != nil {
		return err
	}
	if c.Database.Type != "" && c.Database.ConnectionString == "" {
		return fmt.Errorf("database %s needs a connectionString", c.Database.Type)
	}
	return nil
}

// DefaultArgs returns the transform arguments configured as defaults
func (c *ServiceConfig) DefaultArgs() filterstructure.Args {
	return filterstructure.Args{Acceptance: c.Acceptance}
}
