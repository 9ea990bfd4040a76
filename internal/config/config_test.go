package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/visualstash/stash/internal/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != "json" {
		t.Errorf("expected json backend default, got %q", cfg.Backend)
	}
	if cfg.LockDelay != 15*time.Second {
		t.Errorf("expected 15s lock delay, got %v", cfg.LockDelay)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend: sqlite\nlockDelay: 30s\nredis:\n  addr: \"redis:6379\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Backend)
	}
	if cfg.LockDelay != 30*time.Second {
		t.Errorf("expected 30s lock delay, got %v", cfg.LockDelay)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("expected redis addr override, got %q", cfg.Redis.Addr)
	}
	// Untouched fields keep defaults.
	if cfg.ListenAddr != "127.0.0.1:7630" {
		t.Errorf("expected default listen addr, got %q", cfg.ListenAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: sqlite\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STASH_BACKEND", "json")
	t.Setenv("STASH_LOCK_DELAY", "5s")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != "json" {
		t.Errorf("expected env override json, got %q", cfg.Backend)
	}
	if cfg.LockDelay != 5*time.Second {
		t.Errorf("expected env lock delay 5s, got %v", cfg.LockDelay)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend: postgres\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for unknown backend")
	}
}
