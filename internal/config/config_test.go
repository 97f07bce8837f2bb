package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// loadFromFs loads content as the config file from an in-memory filesystem.
func loadFromFs(t *testing.T, content string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/etc/pybar/config.yaml", []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	viper.SetFs(fs)
	viper.SetConfigFile("/etc/pybar/config.yaml")
	SetDefaults()
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	return Load()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bar.Geometry != "1920x30+0+0" {
		t.Errorf("Bar.Geometry = %q, want %q", cfg.Bar.Geometry, "1920x30+0+0")
	}
	if len(cfg.Bar.Fonts) != 4 {
		t.Errorf("len(Bar.Fonts) = %d, want 4", len(cfg.Bar.Fonts))
	}
	if cfg.Spawn.Via != "herbstclient" {
		t.Errorf("Spawn.Via = %q, want herbstclient", cfg.Spawn.Via)
	}
	if cfg.Volume.Step != 1 {
		t.Errorf("Volume.Step = %d, want 1", cfg.Volume.Step)
	}
	if cfg.Clock.Format != "02.01.06 15:04" {
		t.Errorf("Clock.Format = %q", cfg.Clock.Format)
	}
	if cfg.Engine.ReadyTimeout != DefaultReadyTimeout {
		t.Errorf("Engine.ReadyTimeout = %v, want %v", cfg.Engine.ReadyTimeout, DefaultReadyTimeout)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() does not validate: %v", ValidationErrors(errs))
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := loadFromFs(t, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := loadFromFs(t, `
bar:
  geometry: 2560x24+0+0
  bottom: true
  fonts: [Terminus-10]
battery:
  font_index: 1
  ignore: ["*hidpp*"]
volume:
  step: 5
  font_index: 1
clock:
  show_seconds: true
engine:
  ready_timeout: 3s
logging:
  level: debug
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bar.Geometry != "2560x24+0+0" || !cfg.Bar.Bottom {
		t.Errorf("Bar = %+v", cfg.Bar)
	}
	if diff := cmp.Diff([]string{"Terminus-10"}, cfg.Bar.Fonts); diff != "" {
		t.Errorf("Bar.Fonts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"*hidpp*"}, cfg.Battery.Ignore); diff != "" {
		t.Errorf("Battery.Ignore mismatch (-want +got):\n%s", diff)
	}
	if cfg.Volume.Step != 5 {
		t.Errorf("Volume.Step = %d, want 5", cfg.Volume.Step)
	}
	if !cfg.Clock.ShowSeconds {
		t.Error("Clock.ShowSeconds = false, want true")
	}
	if cfg.Engine.ReadyTimeout != 3*time.Second {
		t.Errorf("Engine.ReadyTimeout = %v, want 3s", cfg.Engine.ReadyTimeout)
	}
	// Untouched sections keep their defaults.
	if cfg.Volume.Color != "#1b998a" {
		t.Errorf("Volume.Color = %q, want default", cfg.Volume.Color)
	}
}

func TestLoad_InvalidReturnsValidationErrors(t *testing.T) {
	_, err := loadFromFs(t, `
spawn:
  via: systemd
volume:
  step: 0
`)
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error = %v (%T), want ValidationErrors", err, err)
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(errs), errs)
	}
	if !strings.Contains(errs.Error(), "2 validation errors") {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	data, err := Default().YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	if !strings.Contains(string(data), "geometry: 1920x30+0+0") {
		t.Errorf("YAML() missing geometry:\n%s", data)
	}

	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if back.Volume.Command != "pavucontrol" {
		t.Errorf("Volume.Command = %q after round trip", back.Volume.Command)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != filepath.Join("/tmp/xdg", "pybar") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != "/tmp/xdg/pybar/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}

	cfg := Default()
	if got := cfg.LayoutFile(); got != "/tmp/xdg/pybar/layout.yaml" {
		t.Errorf("LayoutFile() = %q", got)
	}
	cfg.Bar.Layout = "/srv/bar.toml"
	if got := cfg.LayoutFile(); got != "/srv/bar.toml" {
		t.Errorf("LayoutFile() = %q", got)
	}
}
