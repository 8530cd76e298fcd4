package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aerissecure/drilldown/style"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "render.parallelism")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// MaxParallelism bounds render.parallelism.
const MaxParallelism = 64

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"xlsx", "html", "text", "docx"}
}

// colorProps are the style properties holding colors.
var colorProps = []string{style.FontColor, style.BgColor, style.BorderColor}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateStyles()...)
	errors = append(errors, c.validateRender()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateStyles() []ValidationError {
	var errors []ValidationError

	if c.GroupBorderStyle < style.BorderNone || c.GroupBorderStyle > style.BorderHair {
		errors = append(errors, ValidationError{
			Field:   "group_border_style",
			Value:   c.GroupBorderStyle,
			Message: fmt.Sprintf("must be between %d and %d", style.BorderNone, style.BorderHair),
		})
	}

	roles := make([]string, 0, len(style.Roles()))
	for _, r := range style.Roles() {
		roles = append(roles, string(r))
	}

	names := make([]string, 0, len(c.Styles))
	for name := range c.Styles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !slices.Contains(roles, name) {
			errors = append(errors, ValidationError{
				Field:   "styles." + name,
				Value:   name,
				Message: fmt.Sprintf("unknown role, must be one of: %s", strings.Join(roles, ", ")),
			})
			continue
		}
		st := style.Style(c.Styles[name])
		for _, prop := range colorProps {
			if _, _, err := st.Color(prop); err != nil {
				errors = append(errors, ValidationError{
					Field:   "styles." + name + "." + prop,
					Value:   st[prop],
					Message: "must be a color name or #rrggbb",
				})
			}
		}
	}

	return errors
}

func (c *Config) validateRender() []ValidationError {
	var errors []ValidationError

	if c.Render.Parallelism < 1 || c.Render.Parallelism > MaxParallelism {
		errors = append(errors, ValidationError{
			Field:   "render.parallelism",
			Value:   c.Render.Parallelism,
			Message: fmt.Sprintf("must be between 1 and %d", MaxParallelism),
		})
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.Format != "" && !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}
