package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/aerissecure/drilldown/render"
	"github.com/aerissecure/drilldown/style"
)

// Config represents the complete drilldown configuration
type Config struct {
	// Styles overrides role base styles, property by property.
	// Keys are role names (title, body_cell, ...), values style properties.
	Styles map[string]map[string]any `mapstructure:"styles"`
	// GroupBorderStyle is the border weight drawn at group boundaries
	// (1 thin .. 7 hair). 0 keeps the default thin line.
	GroupBorderStyle int           `mapstructure:"group_border_style"`
	Render           RenderConfig  `mapstructure:"render"`
	Output           OutputConfig  `mapstructure:"output"`
	Logging          LoggingConfig `mapstructure:"logging"`
}

// RenderConfig controls the rendering session
type RenderConfig struct {
	// SkipErrors renders the remaining pages when one page fails and
	// reports the failures at the end.
	SkipErrors bool `mapstructure:"skip_errors"`
	// Parallelism is the number of pages rendered concurrently.
	Parallelism int `mapstructure:"parallelism"`
}

// OutputConfig controls what the render command writes
type OutputConfig struct {
	// Format is one of ValidOutputFormats.
	Format string `mapstructure:"format"`
}

// LoggingConfig controls diagnostics
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
	File   string `mapstructure:"file"`   // "" logs to stderr
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Styles:           map[string]map[string]any{},
		GroupBorderStyle: style.DefaultGroupBorder,
		Render: RenderConfig{
			SkipErrors:  false,
			Parallelism: 1,
		},
		Output: OutputConfig{
			Format: "xlsx",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers the defaults with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("group_border_style", defaults.GroupBorderStyle)

	// Render defaults
	viper.SetDefault("render.skip_errors", defaults.Render.SkipErrors)
	viper.SetDefault("render.parallelism", defaults.Render.Parallelism)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
	viper.SetDefault("logging.file", defaults.Logging.File)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "drilldown")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drilldown"
	}
	return filepath.Join(home, ".config", "drilldown")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StyleConfig builds the role styles from the defaults and Styles.
func (c *Config) StyleConfig() (style.Config, error) {
	overrides := make(map[string]style.Style, len(c.Styles))
	for role, props := range c.Styles {
		overrides[role] = style.Style(props)
	}
	return style.NewConfig(overrides, c.GroupBorderStyle)
}

// Policy returns the page failure policy.
func (c *Config) Policy() render.Policy {
	if c.Render.SkipErrors {
		return render.SkipAndReport
	}
	return render.FailFast
}

// RenderOptions translates the configuration into renderer options.
func (c *Config) RenderOptions(logger *slog.Logger) ([]render.Option, error) {
	styles, err := c.StyleConfig()
	if err != nil {
		return nil, fmt.Errorf("styles: %w", err)
	}
	return []render.Option{
		render.WithConfig(styles),
		render.WithPolicy(c.Policy()),
		render.WithParallelism(c.Render.Parallelism),
		render.WithLogger(logger),
	}, nil
}
