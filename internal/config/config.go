// Package config defines the pybar configuration and loads it with viper.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete pybar configuration
type Config struct {
	Bar     BarConfig     `mapstructure:"bar" yaml:"bar"`
	Spawn   SpawnConfig   `mapstructure:"spawn" yaml:"spawn"`
	Battery BatteryConfig `mapstructure:"battery" yaml:"battery"`
	Volume  VolumeConfig  `mapstructure:"volume" yaml:"volume"`
	Clock   ClockConfig   `mapstructure:"clock" yaml:"clock"`
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
}

// BarConfig controls the lemonbar process and the layout it shows
type BarConfig struct {
	// Lemonbar is the lemonbar executable; looked up on PATH (default: "lemonbar")
	Lemonbar string `mapstructure:"lemonbar" yaml:"lemonbar"`
	// Geometry is passed to -g, e.g. "1920x30+0+0"
	Geometry string `mapstructure:"geometry" yaml:"geometry"`
	// Fonts are passed to -f in order; markup font indices are 1-based into this list
	Fonts []string `mapstructure:"fonts" yaml:"fonts"`
	// Background and Foreground are the default colors (-B, -F)
	Background string `mapstructure:"background" yaml:"background"`
	Foreground string `mapstructure:"foreground" yaml:"foreground"`
	// UnderlineWidth is the underline height in pixels (-u)
	UnderlineWidth int `mapstructure:"underline_width" yaml:"underline_width"`
	// Bottom docks the bar at the bottom of the screen (-b)
	Bottom bool `mapstructure:"bottom" yaml:"bottom"`
	// Clickable is the number of click regions lemonbar allocates (-a); 0 keeps lemonbar's default
	Clickable int `mapstructure:"clickable" yaml:"clickable"`
	// Name is the WM_NAME of the bar window (-n)
	Name string `mapstructure:"name" yaml:"name"`
	// Layout is the layout file. If empty, layout.yaml in the config
	// directory is used when present, otherwise the built-in layout.
	Layout string `mapstructure:"layout" yaml:"layout"`
	// WatchLayout reloads the layout when its file changes (default: true)
	WatchLayout bool `mapstructure:"watch_layout" yaml:"watch_layout"`
}

// SpawnConfig controls how click actions start programs
type SpawnConfig struct {
	// Via is "herbstclient" or "direct" (default: "herbstclient")
	Via string `mapstructure:"via" yaml:"via"`
}

// BatteryConfig controls the battery widgets
type BatteryConfig struct {
	// FontIndex is the 1-based font used for icons; 0 keeps the current font
	FontIndex int `mapstructure:"font_index" yaml:"font_index"`
	// Ignore lists glob patterns of devices to hide (object path, base name, native path or model)
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`
}

// VolumeConfig controls the volume widget
type VolumeConfig struct {
	FontIndex int    `mapstructure:"font_index" yaml:"font_index"`
	Color     string `mapstructure:"color" yaml:"color"`
	// Step is the scroll adjustment in percent (default: 1)
	Step int `mapstructure:"step" yaml:"step"`
	// Command runs on left click, e.g. a mixer; empty disables it
	Command string `mapstructure:"command" yaml:"command"`
	// Pactl is the pactl executable (default: "pactl")
	Pactl string `mapstructure:"pactl" yaml:"pactl"`
}

// ClockConfig controls the clock widget
type ClockConfig struct {
	ShowSeconds bool `mapstructure:"show_seconds" yaml:"show_seconds"`
	// Format is a Go time layout without seconds (default: "02.01.06 15:04")
	Format string `mapstructure:"format" yaml:"format"`
}

// NetworkConfig controls the address widget
type NetworkConfig struct {
	// Interface is the network interface shown by the address widget
	Interface string `mapstructure:"interface" yaml:"interface"`
	Color     string `mapstructure:"color" yaml:"color"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log file; empty logs to stderr
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated backups
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// DefaultReadyTimeout bounds how long a layout box waits for a child that
// has not produced a value, e.g. a battery box on a machine without
// batteries.
const DefaultReadyTimeout = 2 * time.Second

// EngineConfig controls the widget engine
type EngineConfig struct {
	// ReadyTimeout leaves a child out of its box line if it has not produced
	// a value in time; 0 waits forever
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Bar: BarConfig{
			Lemonbar: "lemonbar",
			Geometry: "1920x30+0+0",
			Fonts: []string{
				"Galmuri7-12",
				"Font Awesome 6 Free Solid-12",
				"Font Awesome 6 Brands-12",
				"font\\-logos",
			},
			Name:        "pybar",
			WatchLayout: true,
		},
		Spawn: SpawnConfig{
			Via: "herbstclient",
		},
		Battery: BatteryConfig{
			FontIndex: 2,
		},
		Volume: VolumeConfig{
			FontIndex: 2,
			Color:     "#1b998a",
			Step:      1,
			Command:   "pavucontrol",
			Pactl:     "pactl",
		},
		Clock: ClockConfig{
			Format: "02.01.06 15:04",
		},
		Network: NetworkConfig{
			Color: "#c9a00e",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
		Engine: EngineConfig{
			ReadyTimeout: DefaultReadyTimeout,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Bar defaults
	viper.SetDefault("bar.lemonbar", defaults.Bar.Lemonbar)
	viper.SetDefault("bar.geometry", defaults.Bar.Geometry)
	viper.SetDefault("bar.fonts", defaults.Bar.Fonts)
	viper.SetDefault("bar.background", defaults.Bar.Background)
	viper.SetDefault("bar.foreground", defaults.Bar.Foreground)
	viper.SetDefault("bar.underline_width", defaults.Bar.UnderlineWidth)
	viper.SetDefault("bar.bottom", defaults.Bar.Bottom)
	viper.SetDefault("bar.clickable", defaults.Bar.Clickable)
	viper.SetDefault("bar.name", defaults.Bar.Name)
	viper.SetDefault("bar.layout", defaults.Bar.Layout)
	viper.SetDefault("bar.watch_layout", defaults.Bar.WatchLayout)

	// Spawn defaults
	viper.SetDefault("spawn.via", defaults.Spawn.Via)

	// Widget defaults
	viper.SetDefault("battery.font_index", defaults.Battery.FontIndex)
	viper.SetDefault("battery.ignore", defaults.Battery.Ignore)
	viper.SetDefault("volume.font_index", defaults.Volume.FontIndex)
	viper.SetDefault("volume.color", defaults.Volume.Color)
	viper.SetDefault("volume.step", defaults.Volume.Step)
	viper.SetDefault("volume.command", defaults.Volume.Command)
	viper.SetDefault("volume.pactl", defaults.Volume.Pactl)
	viper.SetDefault("clock.show_seconds", defaults.Clock.ShowSeconds)
	viper.SetDefault("clock.format", defaults.Clock.Format)
	viper.SetDefault("network.interface", defaults.Network.Interface)
	viper.SetDefault("network.color", defaults.Network.Color)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Engine defaults
	viper.SetDefault("engine.ready_timeout", defaults.Engine.ReadyTimeout)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// YAML renders the configuration in the format of the config file
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pybar")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pybar"
	}
	return filepath.Join(home, ".config", "pybar")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LayoutFile returns the configured layout file, or layout.yaml in the
// config directory when none is set
func (c *Config) LayoutFile() string {
	if c.Bar.Layout != "" {
		return c.Bar.Layout
	}
	return filepath.Join(ConfigDir(), "layout.yaml")
}
