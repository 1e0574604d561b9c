// Package config loads reflow settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/reflow/layout"
)

// Config is the top-level configuration.
type Config struct {
	Layout LayoutConfig `yaml:"layout"`
	Fonts  FontsConfig  `yaml:"fonts"`
	Log    LogConfig    `yaml:"log"`
}

// LayoutConfig tunes the layout engine.
type LayoutConfig struct {
	LineHeightFactor        float64 `yaml:"line_height_factor"`
	WidthTolerance          float64 `yaml:"width_tolerance"`
	AvgCharWidth            float64 `yaml:"avg_char_width"`
	ShrinkToFit             bool    `yaml:"shrink_to_fit"`
	MaxFontReductionPercent float64 `yaml:"max_font_reduction_percent"`
	MinFontSize             float64 `yaml:"min_font_size"`
	Workers                 int     `yaml:"workers"`
}

// FontsConfig controls font discovery and substitution.
type FontsConfig struct {
	DefaultFamily string   `yaml:"default_family"`
	Directories   []string `yaml:"directories"`
	MappingsFile  string   `yaml:"mappings_file"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			LineHeightFactor:        layout.DefaultLineHeightFactor,
			WidthTolerance:          layout.DefaultWidthTolerance,
			AvgCharWidth:            layout.AvgCharWidthFactor,
			ShrinkToFit:             true,
			MaxFontReductionPercent: 20,
			MinFontSize:             6,
			Workers:                 4,
		},
		Fonts: FontsConfig{
			DefaultFamily: "Arial",
			MappingsFile:  "config/font_mappings.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	var errs []error
	l := c.Layout
	if l.LineHeightFactor <= 0 {
		errs = append(errs, fmt.Errorf("layout.line_height_factor must be positive, got %g", l.LineHeightFactor))
	}
	if l.WidthTolerance < 0 {
		errs = append(errs, fmt.Errorf("layout.width_tolerance must not be negative, got %g", l.WidthTolerance))
	}
	if l.AvgCharWidth <= 0 {
		errs = append(errs, fmt.Errorf("layout.avg_char_width must be positive, got %g", l.AvgCharWidth))
	}
	if l.MaxFontReductionPercent < 0 || l.MaxFontReductionPercent > 100 {
		errs = append(errs, fmt.Errorf("layout.max_font_reduction_percent must be within [0, 100], got %g", l.MaxFontReductionPercent))
	}
	if l.MinFontSize < 0 {
		errs = append(errs, fmt.Errorf("layout.min_font_size must not be negative, got %g", l.MinFontSize))
	}
	if l.Workers < 0 {
		errs = append(errs, fmt.Errorf("layout.workers must not be negative, got %d", l.Workers))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// FitConstraints returns the font-shrink limits for the engine.
func (l LayoutConfig) FitConstraints() layout.FitConstraints {
	return layout.FitConstraints{
		MinSize:             l.MinFontSize,
		MaxReductionPercent: l.MaxFontReductionPercent,
	}
}

// Save writes the configuration as YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
