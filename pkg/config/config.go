// Package config loads the YAML configuration of the a11ycorpus CLI.
// Every field has a default; a file only overrides what it names, and
// command-line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/duration"
	"gopkg.in/yaml.v3"
)

// Config holds all CLI configuration options
type Config struct {
	// Manifest is the third-party test description (JSON or YAML).
	Manifest string `yaml:"manifest"`
	// Fixtures is the corpus directory.
	Fixtures string `yaml:"fixtures"`
	// ExamplePages and Assets are resolved against the vendored suite.
	ExamplePages string `yaml:"example_pages"`
	Assets       string `yaml:"assets"`
	// Rules is a directory of rule scripts. Empty runs without rules.
	Rules string `yaml:"rules"`

	Concurrency int `yaml:"concurrency"`
	// MetricsTextfile receives the run summary in Prometheus text format.
	MetricsTextfile string `yaml:"metrics_textfile"`

	Browser Browser `yaml:"browser"`
	Log     Log     `yaml:"log"`
}

// Browser configures page capture.
type Browser struct {
	ExecPath       string        `yaml:"exec_path"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	CaptureTimeout time.Duration `yaml:"capture_timeout"`
	Settle         time.Duration `yaml:"settle"`
}

// Log configures logging.
type Log struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is auto, text, json or tint. auto picks tint on a terminal.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Manifest:     filepath.Join(defaults.VendorDir, defaults.ManifestFile),
		Fixtures:     defaults.FixturesDir,
		ExamplePages: filepath.Join(defaults.VendorDir, defaults.ExamplePagesDir),
		Assets:       filepath.Join(defaults.VendorDir, defaults.AssetsDir),
		Concurrency:  defaults.ConcurrencyVerify,
		Browser: Browser{
			Width:          defaults.ViewportWidth,
			Height:         defaults.ViewportHeight,
			CaptureTimeout: duration.CapturePage,
			Settle:         duration.CaptureSettle,
		},
		Log: Log{Level: "info", Format: "auto"},
	}
}

// Load reads the file at path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or conflicting values.
func (c *Config) Validate() error {
	switch {
	case c.Manifest == "":
		return fmt.Errorf("%w: manifest", ErrMissingRequired)
	case c.Fixtures == "":
		return fmt.Errorf("%w: fixtures", ErrMissingRequired)
	case c.Concurrency < defaults.ConcurrencyMinimal:
		return fmt.Errorf("%w: concurrency must be at least %d, got %d",
			ErrInvalidConfig, defaults.ConcurrencyMinimal, c.Concurrency)
	case c.Browser.Width <= 0 || c.Browser.Height <= 0:
		return fmt.Errorf("%w: browser viewport %dx%d", ErrInvalidConfig, c.Browser.Width, c.Browser.Height)
	case c.Browser.CaptureTimeout <= 0:
		return fmt.Errorf("%w: browser capture_timeout must be positive", ErrInvalidConfig)
	case c.Browser.Settle < 0:
		return fmt.Errorf("%w: browser settle must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "auto", "text", "json", "tint":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return l, nil
}
