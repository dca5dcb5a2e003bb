package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Fetch.MaxTilePx != 4096 {
		t.Errorf("expected max tile 4096, got %d", cfg.Fetch.MaxTilePx)
	}
	if cfg.Fetch.RequestTimeout != 60*time.Second {
		t.Errorf("expected timeout 60s, got %v", cfg.Fetch.RequestTimeout)
	}
	if cfg.Export.MaxResolution != 8192 {
		t.Errorf("expected max resolution 8192, got %d", cfg.Export.MaxResolution)
	}
	if cfg.Preview.PatchSize != 256 {
		t.Errorf("expected preview patch size 256, got %d", cfg.Preview.PatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte("export:\n  max_resolution: 2048\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Export.MaxResolution != 2048 {
		t.Errorf("file value not applied, got %d", cfg.Export.MaxResolution)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("file value not applied, got %s", cfg.Logging.Level)
	}
	// Untouched fields keep defaults.
	if cfg.Fetch.MaxTilePx != 4096 {
		t.Errorf("default clobbered, got %d", cfg.Fetch.MaxTilePx)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Export.MaxResolution = 1024
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Export.MaxResolution != 1024 {
		t.Errorf("round trip lost value, got %d", loaded.Export.MaxResolution)
	}
}
