package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reoring/chainref"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chainref.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvRootDir, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvMetricsFile, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Log)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNoRootDir) {
		t.Fatalf("expected ErrNoRootDir, got %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	root := t.TempDir()
	path := writeTempConfig(t, `root_dir: /from/file
logging:
  level: warn
  format: json
metrics:
  file: /tmp/file.prom
`)
	t.Setenv(EnvRootDir, root)
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvMetricsFile, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RootDir != root {
		t.Errorf("env should override root_dir, got %q", cfg.RootDir)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "json" {
		t.Errorf("unexpected logging: %+v", cfg.Log)
	}
	if cfg.Log.MaxBackups != 3 {
		t.Errorf("default max_backups lost: %d", cfg.Log.MaxBackups)
	}
	if cfg.Metrics.File != "/tmp/file.prom" {
		t.Errorf("unexpected metrics file: %q", cfg.Metrics.File)
	}
	if cfg.IgnorePath() != filepath.Join(root, chainref.IgnoreFileName) {
		t.Errorf("unexpected ignore path: %q", cfg.IgnorePath())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "root_dir: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRejectsFileRoot(t *testing.T) {
	file := writeTempConfig(t, "")
	cfg := Default()
	cfg.RootDir = file
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for non-directory root")
	}
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := Default()
	cfg.RootDir = t.TempDir()
	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
