package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Camera.MinZoom != 0.1 || cfg.Camera.MaxZoom != 8 {
		t.Errorf("expected zoom bounds [0.1, 8], got [%g, %g]", cfg.Camera.MinZoom, cfg.Camera.MaxZoom)
	}
	if cfg.Camera.FocusDuration != 750*time.Millisecond {
		t.Errorf("expected 750ms focus duration, got %v", cfg.Camera.FocusDuration)
	}
	if !cfg.Layout.PinEnabled() {
		t.Error("expected time-axis pinning on by default")
	}
	if cfg.Data.IsRemote() {
		t.Errorf("default source %q should be a local file", cfg.Data.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Layout.LinkDistance != 60 {
		t.Errorf("expected default config, got link distance %g", cfg.Layout.LinkDistance)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data:
  source: https://example.org/graph-data.json
fetch:
  retry_max: 2
  wait_min: 100ms
camera:
  max_zoom: 4
  focus_duration: 1s
layout:
  pin: false
ui:
  default_fields:
    - Physics
    - Mathematics
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Data.IsRemote() {
		t.Errorf("expected remote source, got %q", cfg.Data.Source)
	}
	if cfg.Fetch.RetryMax != 2 {
		t.Errorf("expected retry_max 2, got %d", cfg.Fetch.RetryMax)
	}
	if cfg.Fetch.WaitMin != 100*time.Millisecond {
		t.Errorf("expected wait_min 100ms, got %v", cfg.Fetch.WaitMin)
	}
	// Unset keys keep their defaults
	if cfg.Fetch.WaitMax != 8*time.Second {
		t.Errorf("expected default wait_max, got %v", cfg.Fetch.WaitMax)
	}
	if cfg.Camera.MaxZoom != 4 || cfg.Camera.MinZoom != 0.1 {
		t.Errorf("unexpected zoom bounds [%g, %g]", cfg.Camera.MinZoom, cfg.Camera.MaxZoom)
	}
	if cfg.Camera.FocusDuration != time.Second {
		t.Errorf("expected 1s focus duration, got %v", cfg.Camera.FocusDuration)
	}
	if cfg.Layout.PinEnabled() {
		t.Error("expected pinning disabled")
	}
	if len(cfg.UI.DefaultFields) != 2 || cfg.UI.DefaultFields[0] != "Physics" {
		t.Errorf("unexpected default fields %v", cfg.UI.DefaultFields)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("camera: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFrom_InvalidZoomBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("camera:\n  min_zoom: 5\n  max_zoom: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected validation error for inverted zoom bounds")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Data.Source = "data/graph.json"
	cfg.Render.DimOpacity = 0.25

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Data.Source != "data/graph.json" {
		t.Errorf("expected source preserved, got %q", loaded.Data.Source)
	}
	if loaded.Render.DimOpacity != 0.25 {
		t.Errorf("expected dim opacity 0.25, got %g", loaded.Render.DimOpacity)
	}
	if loaded.Camera.FocusDuration != 750*time.Millisecond {
		t.Errorf("expected duration to survive round trip, got %v", loaded.Camera.FocusDuration)
	}
}

func TestConfigDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != "/tmp/xdg-test/intellect" {
		t.Errorf("expected /tmp/xdg-test/intellect, got %q", got)
	}
	if got := ConfigPath(); got != "/tmp/xdg-test/intellect/config.yaml" {
		t.Errorf("unexpected config path %q", got)
	}
}
