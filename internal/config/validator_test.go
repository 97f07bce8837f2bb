package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"bad geometry", func(c *Config) { c.Bar.Geometry = "wide" }, "bar.geometry"},
		{"bad background", func(c *Config) { c.Bar.Background = "black" }, "bar.background"},
		{"negative underline", func(c *Config) { c.Bar.UnderlineWidth = -1 }, "bar.underline_width"},
		{"negative clickable", func(c *Config) { c.Bar.Clickable = -3 }, "bar.clickable"},
		{"unknown spawn", func(c *Config) { c.Spawn.Via = "i3-msg" }, "spawn.via"},
		{"font index past fonts", func(c *Config) { c.Battery.FontIndex = 9 }, "battery.font_index"},
		{"bad glob", func(c *Config) { c.Battery.Ignore = []string{"ok", "[oops"} }, "battery.ignore[1]"},
		{"step too large", func(c *Config) { c.Volume.Step = 101 }, "volume.step"},
		{"bad volume color", func(c *Config) { c.Volume.Color = "#12" }, "volume.color"},
		{"bad network color", func(c *Config) { c.Network.Color = "teal" }, "network.color"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"zero log size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"huge log size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
		{"negative ready timeout", func(c *Config) { c.Engine.ReadyTimeout = -time.Second }, "engine.ready_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), ValidationErrors(errs))
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidate_AcceptsVariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"geometry width only", func(c *Config) { c.Bar.Geometry = "x24" }},
		{"geometry with negative offset", func(c *Config) { c.Bar.Geometry = "1000x20-10+0" }},
		{"argb color", func(c *Config) { c.Bar.Background = "#80000000" }},
		{"short color", func(c *Config) { c.Volume.Color = "#fff" }},
		{"uppercase level", func(c *Config) { c.Logging.Level = "DEBUG" }},
		{"direct spawn", func(c *Config) { c.Spawn.Via = "direct" }},
		{"no fonts allows any index", func(c *Config) { c.Bar.Fonts = nil; c.Battery.FontIndex = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if errs := cfg.Validate(); len(errs) != 0 {
				t.Errorf("Validate() = %v, want no errors", ValidationErrors(errs))
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "" {
		t.Errorf("empty Error() = %q", got)
	}
	one := ValidationErrors{{Field: "volume.step", Value: 0, Message: "must be between 1 and 100"}}
	if got, want := one.Error(), "volume.step: must be between 1 and 100 (got: 0)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
