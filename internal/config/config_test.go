package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/aerissecure/drilldown/render"
	"github.com/aerissecure/drilldown/style"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.GroupBorderStyle != style.BorderThin {
		t.Errorf("GroupBorderStyle = %d, want %d", cfg.GroupBorderStyle, style.BorderThin)
	}
	if cfg.Render.SkipErrors {
		t.Error("Render.SkipErrors should be false by default")
	}
	if cfg.Render.Parallelism != 1 {
		t.Errorf("Render.Parallelism = %d, want 1", cfg.Render.Parallelism)
	}
	if cfg.Output.Format != "xlsx" {
		t.Errorf("Output.Format = %q, want xlsx", cfg.Output.Format)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config is invalid: %v", ValidationErrors(errs))
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigDir(), "/custom/config/drilldown"; got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
	if got, want := ConfigFile(), "/custom/config/drilldown/config.yaml"; got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}

const sampleConfig = `
group_border_style: 2
styles:
  title:
    font_size: 18
  body_cell:
    bg_color: "#eeeeee"
render:
  skip_errors: true
  parallelism: 4
output:
  format: html
`

func TestLoad(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader(sampleConfig)); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GroupBorderStyle != 2 || cfg.Output.Format != "html" || cfg.Render.Parallelism != 4 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want the default", cfg.Logging.Level)
	}
	if cfg.Policy() != render.SkipAndReport {
		t.Errorf("Policy() = %v", cfg.Policy())
	}

	styles, err := cfg.StyleConfig()
	if err != nil {
		t.Fatalf("StyleConfig: %v", err)
	}
	title := styles.Style(style.Title)
	if title.Int(style.FontSize) != 18 || !title.Bool(style.Bold) {
		t.Errorf("title style = %v, want overridden size and default bold", title)
	}
	if got := styles.Style(style.BodyCell).Str(style.BgColor); got != "#eeeeee" {
		t.Errorf("body bg = %q", got)
	}
	if styles.GroupBorder() != style.BorderMedium {
		t.Errorf("GroupBorder() = %d", styles.GroupBorder())
	}

	opts, err := cfg.RenderOptions(nil)
	if err != nil || len(opts) == 0 {
		t.Errorf("RenderOptions() = %d options, %v", len(opts), err)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("output.format", "pdf")
	viper.Set("render.parallelism", 0)

	_, err := Load()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Load() = %v, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(verrs), verrs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown role", func(c *Config) { c.Styles["header"] = map[string]any{"bold": true} }, "styles.header"},
		{"bad color", func(c *Config) { c.Styles["title"] = map[string]any{"font_color": "#12"} }, "styles.title.font_color"},
		{"border out of range", func(c *Config) { c.GroupBorderStyle = 9 }, "group_border_style"},
		{"parallelism too high", func(c *Config) { c.Render.Parallelism = MaxParallelism + 1 }, "render.parallelism"},
		{"output format", func(c *Config) { c.Output.Format = "pdf" }, "output.format"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), ValidationErrors(errs))
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := errs.Error()
	if !strings.HasPrefix(msg, "2 validation errors:") || !strings.Contains(msg, "b: worse (got: 2)") {
		t.Errorf("unexpected message %q", msg)
	}
	if got := ValidationErrors(errs[:1]).Error(); got != "a: bad (got: 1)" {
		t.Errorf("single error message = %q", got)
	}
}
