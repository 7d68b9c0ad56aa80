package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
}
