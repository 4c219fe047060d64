package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DebounceMS != 300 || cfg.CacheSize != 512 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"debounce_ms": 50, "log_level": "debug"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DebounceMS != 50 || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CacheSize != 512 {
		t.Fatalf("untouched keys keep defaults: %+v", cfg)
	}
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"debounce_ms": 50}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DYNFORM_DEBOUNCE_MS", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DebounceMS != 25 {
		t.Fatalf("environment must win over the file, got %d", cfg.DebounceMS)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("DYNFORM_LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected a validation error for an unknown log level")
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("missing config files are not an error: %v", err)
	}
}
