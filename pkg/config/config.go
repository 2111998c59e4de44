// Package config handles loading and saving intellect configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/intellect/config.yaml
//   - Data:    ~/.local/share/intellect/ (exports, built documents)
//   - State:   ~/.local/state/intellect/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under the XDG roots.
const AppName = "intellect"

// DataConfig says where the graph document comes from.
type DataConfig struct {
	Source string `yaml:"source,omitempty"` // File path or http(s) URL of graph-data.json
	Watch  bool   `yaml:"watch,omitempty"`  // Reload when the file changes (file sources only)
}

// FetchConfig controls HTTP loading of the document.
type FetchConfig struct {
	RetryMax int           `yaml:"retry_max,omitempty"`
	WaitMin  time.Duration `yaml:"wait_min,omitempty"`
	WaitMax  time.Duration `yaml:"wait_max,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// LayoutConfig holds force simulation parameters.
type LayoutConfig struct {
	LinkStrength    float64 `yaml:"link_strength,omitempty"`
	LinkDistance    float64 `yaml:"link_distance,omitempty"`
	ChargeStrength  float64 `yaml:"charge_strength,omitempty"`
	Theta           float64 `yaml:"theta,omitempty"`
	BandStrength    float64 `yaml:"band_strength,omitempty"`
	PersonBand      float64 `yaml:"person_band,omitempty"`      // Fraction of height (0-1)
	AchievementBand float64 `yaml:"achievement_band,omitempty"` // Fraction of height (0-1)
	CollideStrength float64 `yaml:"collide_strength,omitempty"`
	VelocityDecay   float64 `yaml:"velocity_decay,omitempty"`
	ReheatAlpha     float64 `yaml:"reheat_alpha,omitempty"`
	Pin             *bool   `yaml:"pin,omitempty"` // Pin nodes to the time axis (default true)
	Seed            int64   `yaml:"seed,omitempty"`
}

// CameraConfig holds zoom bounds and focus animation timings.
type CameraConfig struct {
	MinZoom       float64       `yaml:"min_zoom,omitempty"`
	MaxZoom       float64       `yaml:"max_zoom,omitempty"`
	FocusScale    float64       `yaml:"focus_scale,omitempty"`
	FocusDuration time.Duration `yaml:"focus_duration,omitempty"`
	PulseLinger   time.Duration `yaml:"pulse_linger,omitempty"`
}

// RenderConfig holds label and styling parameters.
type RenderConfig struct {
	LabelZoomThreshold float64 `yaml:"label_zoom_threshold,omitempty"`
	BaseFontSize       float64 `yaml:"base_font_size,omitempty"`
	CurveOffset        float64 `yaml:"curve_offset,omitempty"`
	DimOpacity         float64 `yaml:"dim_opacity,omitempty"`
}

// UIConfig holds terminal host preferences.
type UIConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval,omitempty"`
	DefaultFields []string      `yaml:"default_fields,omitempty"` // Empty means every field
}

// Config is the top-level configuration for intellect.
type Config struct {
	Data   DataConfig   `yaml:"data,omitempty"`
	Fetch  FetchConfig  `yaml:"fetch,omitempty"`
	Layout LayoutConfig `yaml:"layout,omitempty"`
	Camera CameraConfig `yaml:"camera,omitempty"`
	Render RenderConfig `yaml:"render,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	pin := true
	return Config{
		Data: DataConfig{
			Source: filepath.Join("public", "graph-data.json"),
		},
		Fetch: FetchConfig{
			RetryMax: 4,
			WaitMin:  500 * time.Millisecond,
			WaitMax:  8 * time.Second,
			Timeout:  15 * time.Second,
		},
		Layout: LayoutConfig{
			LinkStrength:    0.05,
			LinkDistance:    60,
			ChargeStrength:  -30,
			Theta:           0.9,
			BandStrength:    0.08,
			PersonBand:      0.35,
			AchievementBand: 0.65,
			CollideStrength: 0.7,
			VelocityDecay:   0.4,
			ReheatAlpha:     0.3,
			Pin:             &pin,
			Seed:            1,
		},
		Camera: CameraConfig{
			MinZoom:       0.1,
			MaxZoom:       8,
			FocusScale:    2.5,
			FocusDuration: 750 * time.Millisecond,
			PulseLinger:   1500 * time.Millisecond,
		},
		Render: RenderConfig{
			LabelZoomThreshold: 0.6,
			BaseFontSize:       12,
			CurveOffset:        0.2,
			DimOpacity:         0.15,
		},
		UI: UIConfig{
			TickInterval: 33 * time.Millisecond,
		},
	}
}

// PinEnabled reports whether nodes are pinned to the time axis.
func (l LayoutConfig) PinEnabled() bool {
	return l.Pin == nil || *l.Pin
}

// IsRemote reports whether the configured source is an HTTP(S) URL.
func (d DataConfig) IsRemote() bool {
	s := strings.ToLower(d.Source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ConfigDir returns the XDG config directory for intellect.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// DataDir returns the XDG data directory for intellect.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Values missing from the
// file keep their defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Data.Source = expandHome(cfg.Data.Source)
	return cfg, nil
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	if c.Camera.MinZoom <= 0 || c.Camera.MaxZoom < c.Camera.MinZoom {
		return fmt.Errorf("invalid zoom bounds [%g, %g]", c.Camera.MinZoom, c.Camera.MaxZoom)
	}
	if c.Layout.PersonBand < 0 || c.Layout.PersonBand > 1 ||
		c.Layout.AchievementBand < 0 || c.Layout.AchievementBand > 1 {
		return fmt.Errorf("band positions must be fractions between 0 and 1")
	}
	if c.Layout.VelocityDecay < 0 || c.Layout.VelocityDecay > 1 {
		return fmt.Errorf("velocity_decay must be between 0 and 1, got %g", c.Layout.VelocityDecay)
	}
	if c.Fetch.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative")
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
