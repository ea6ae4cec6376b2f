package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDerivesPathsAndDefaults(t *testing.T) {
	vault := t.TempDir()
	cfg, err := New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(vault, ".bookplus", "bookplus.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.SnapshotInterval != 2*time.Second {
		t.Fatalf("expected 2s snapshot interval, got %s", cfg.SnapshotInterval)
	}
	if cfg.ContentVersion != "full" || cfg.UserKey != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewAppliesFileThenEnv(t *testing.T) {
	vault := t.TempDir()
	if err := os.MkdirAll(filepath.Join(vault, ".bookplus"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := "user: alice\ncontent_version: condensed\nsnapshot_interval: 5s\n"
	if err := os.WriteFile(filepath.Join(vault, ".bookplus", "config.yaml"), []byte(file), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BOOKPLUS_CONTENT_VERSION", "summary")

	cfg, err := New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.UserKey != "alice" {
		t.Fatalf("expected user from file, got %q", cfg.UserKey)
	}
	if cfg.ContentVersion != "summary" {
		t.Fatalf("expected env to win over file, got %q", cfg.ContentVersion)
	}
	if cfg.SnapshotInterval != 5*time.Second {
		t.Fatalf("expected 5s from file, got %s", cfg.SnapshotInterval)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected empty vault path to fail")
	}
	t.Setenv("BOOKPLUS_CONTENT_VERSION", "abridged")
	if _, err := New(t.TempDir()); err == nil {
		t.Fatalf("expected invalid content version to fail")
	}
}
