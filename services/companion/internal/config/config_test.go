package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("COMPANION_DATA_DIR", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir == "" || cfg.LogLevel != "info" || cfg.BackendURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if filepath.Base(cfg.StorePath()) != "iris.db" {
		t.Fatalf("store path = %q", cfg.StorePath())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "companion.yaml")
	body := "dataDir: " + dir + "\nbackendURL: http://localhost:5000\ndenyCamera: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "k1")
	t.Setenv("COMPANION_DENY_LOCATION", "true")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != dir || cfg.AIAPIKey != "k1" || !cfg.DenyCamera || !cfg.DenyLocation {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsBadBackendURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companion.yaml")
	if err := os.WriteFile(path, []byte("backendURL: localhost:5000\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "backendURL") {
		t.Fatalf("expected backendURL error, got %v", err)
	}
}
