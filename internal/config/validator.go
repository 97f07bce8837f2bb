package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Jeropeesee-Bashan/pybar/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "bar.geometry")
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

var (
	// geometryRegex matches lemonbar's WxH+X+Y with every part optional
	geometryRegex = regexp.MustCompile(`^(\d*x\d*)?([+-]\d+){0,2}$`)
	// colorRegex matches #RGB, #RRGGBB and #AARRGGBB
	colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// ValidSpawnMethods returns the list of valid spawn.via values
func ValidSpawnMethods() []string {
	return []string{"herbstclient", "direct"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBar()...)
	errors = append(errors, c.validateSpawn()...)
	errors = append(errors, c.validateWidgets()...)
	errors = append(errors, c.validateLogging()...)

	if c.Engine.ReadyTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "engine.ready_timeout",
			Value:   c.Engine.ReadyTimeout,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateBar validates the BarConfig
func (c *Config) validateBar() []ValidationError {
	var errors []ValidationError

	if c.Bar.Geometry != "" && !geometryRegex.MatchString(c.Bar.Geometry) {
		errors = append(errors, ValidationError{
			Field:   "bar.geometry",
			Value:   c.Bar.Geometry,
			Message: "must look like WIDTHxHEIGHT+X+Y",
		})
	}

	for _, f := range []struct {
		field, value string
	}{
		{"bar.background", c.Bar.Background},
		{"bar.foreground", c.Bar.Foreground},
	} {
		if f.value != "" && !colorRegex.MatchString(f.value) {
			errors = append(errors, colorError(f.field, f.value))
		}
	}

	if c.Bar.UnderlineWidth < 0 {
		errors = append(errors, ValidationError{
			Field:   "bar.underline_width",
			Value:   c.Bar.UnderlineWidth,
			Message: "must be non-negative",
		})
	}
	if c.Bar.Clickable < 0 {
		errors = append(errors, ValidationError{
			Field:   "bar.clickable",
			Value:   c.Bar.Clickable,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateSpawn validates the SpawnConfig
func (c *Config) validateSpawn() []ValidationError {
	if c.Spawn.Via == "" || slices.Contains(ValidSpawnMethods(), c.Spawn.Via) {
		return nil
	}
	return []ValidationError{{
		Field:   "spawn.via",
		Value:   c.Spawn.Via,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSpawnMethods(), ", ")),
	}}
}

// validateWidgets validates the widget sections
func (c *Config) validateWidgets() []ValidationError {
	var errors []ValidationError

	fonts := len(c.Bar.Fonts)
	for _, f := range []struct {
		field string
		index int
	}{
		{"battery.font_index", c.Battery.FontIndex},
		{"volume.font_index", c.Volume.FontIndex},
	} {
		if f.index < 0 || (fonts > 0 && f.index > fonts) {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.index,
				Message: fmt.Sprintf("must be between 0 and the number of fonts (%d)", fonts),
			})
		}
	}

	for i, pattern := range c.Battery.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("battery.ignore[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}
	}

	if c.Volume.Step < 1 || c.Volume.Step > 100 {
		errors = append(errors, ValidationError{
			Field:   "volume.step",
			Value:   c.Volume.Step,
			Message: "must be between 1 and 100",
		})
	}

	for _, f := range []struct {
		field, value string
	}{
		{"volume.color", c.Volume.Color},
		{"network.color", c.Network.Color},
	} {
		if f.value != "" && !colorRegex.MatchString(f.value) {
			errors = append(errors, colorError(f.field, f.value))
		}
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(logging.ValidLevels(), strings.ToUpper(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func colorError(field, value string) ValidationError {
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: "must be a hex color like #rrggbb",
	}
}
