package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("workspace:\n  dir: /tmp/plans\n  actor_id: robin\noutput:\n  format: json\n  pretty: false\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Workspace.Dir != "/tmp/plans" {
		t.Errorf("dir = %q", cfg.Workspace.Dir)
	}
	if cfg.Workspace.ActorID != "robin" {
		t.Errorf("actor = %q", cfg.Workspace.ActorID)
	}
	if cfg.Output.Pretty {
		t.Errorf("pretty should be off")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("format default lost: %q", cfg.Output.Format)
	}
	if !cfg.Output.Pretty {
		t.Errorf("pretty default lost")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CADENCE_DIR", "/srv/cadence")
	t.Setenv("CADENCE_LOG_LEVEL", "error")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workspace.Dir != "/srv/cadence" {
		t.Errorf("dir = %q", cfg.Workspace.Dir)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("level = %q", cfg.Log.Level)
	}
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "shouting"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
	log, err := NewLogger(LogConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer log.Sync()
}
