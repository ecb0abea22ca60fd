// Package config loads pagefit.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/pagefit/internal/browser"
	"github.com/gompdf/pagefit/internal/render"
	"github.com/gompdf/pagefit/internal/res"
	"github.com/gompdf/pagefit/internal/tokens"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "pagefit.yaml"

// ErrInvalidConfig reports a configuration value out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Measurer backends.
const (
	MeasurerLayout  = "layout"
	MeasurerBrowser = "browser"
)

// Config holds all pagefit configuration.
type Config struct {
	PageSize string `yaml:"page_size"` // letter, a4
	Measurer string `yaml:"measurer"`  // layout, browser

	// Re-measure loop timing
	SettleDelay time.Duration `yaml:"settle_delay"`
	Debounce    time.Duration `yaml:"debounce"`

	// MaxAutoFitSteps bounds AutoFitUntilFits.
	MaxAutoFitSteps int `yaml:"max_autofit_steps"`

	Browser browser.Config `yaml:"browser"`
	Output  OutputConfig   `yaml:"output"`
	Logging LoggingConfig  `yaml:"logging"`
}

// OutputConfig configures export.
type OutputConfig struct {
	Format       string `yaml:"format"` // pdf, html
	Dir          string `yaml:"dir"`
	Author       string `yaml:"author"`
	BaselineGrid bool   `yaml:"baseline_grid"`
	// Force exports even when the content overflows.
	Force bool `yaml:"force"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		PageSize:        string(tokens.PageLetter),
		Measurer:        MeasurerLayout,
		SettleDelay:     50 * time.Millisecond,
		Debounce:        16 * time.Millisecond,
		MaxAutoFitSteps: 11,
		Browser: browser.Config{
			Timeout: browser.DefaultTimeout,
		},
		Output: OutputConfig{
			Format: string(render.FormatPDF),
			Dir:    ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// Open loads configuration through loader, so it may come from a URL.
func Open(ctx context.Context, loader *res.Loader, location string) (*Config, error) {
	r, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if r.Kind == res.KindHTML {
		return nil, fmt.Errorf("%w: %s is not YAML", ErrInvalidConfig, location)
	}
	return parse(r.Data)
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks every field that has a closed set of values.
func (c *Config) Validate() error {
	var problems []string
	if _, err := tokens.ParsePageSize(c.PageSize); err != nil {
		problems = append(problems, err.Error())
	}
	switch c.Measurer {
	case MeasurerLayout, MeasurerBrowser:
	default:
		problems = append(problems, fmt.Sprintf("measurer must be %s or %s, got %q", MeasurerLayout, MeasurerBrowser, c.Measurer))
	}
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		problems = append(problems, err.Error())
	}
	if c.SettleDelay < 0 || c.Debounce < 0 {
		problems = append(problems, "durations must not be negative")
	}
	if c.MaxAutoFitSteps < 1 {
		problems = append(problems, "max_autofit_steps must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Geometry returns the configured page geometry.
func (c *Config) Geometry() (tokens.Geometry, error) {
	size, err := tokens.ParsePageSize(c.PageSize)
	if err != nil {
		return tokens.Geometry{}, err
	}
	return tokens.GeometryFor(size)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAGEFIT_PAGE_SIZE"); v != "" {
		c.PageSize = v
	}
	if v := os.Getenv("PAGEFIT_MEASURER"); v != "" {
		c.Measurer = v
	}
	if v := os.Getenv("PAGEFIT_CHROME_URL"); v != "" {
		c.Browser.ControlURL = v
	}
}
