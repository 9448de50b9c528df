package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/chainref"
)

// Environment variables consulted by Load.
const (
	EnvRootDir     = "ROOT_DIR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvMetricsFile = "CHAINREF_METRICS_FILE"
)

// ErrNoRootDir is returned by Validate when no data root is configured.
var ErrNoRootDir = errors.New("root_dir is required (set ROOT_DIR or -root)")

// Config is the runtime configuration of the chainref CLI.
type Config struct {
	RootDir string `yaml:"root_dir"`
	// IgnoreFile defaults to <root_dir>/ignore_error.txt.
	IgnoreFile string        `yaml:"ignore_file"`
	Log        LoggingConfig `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or text
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MetricsConfig struct {
	// File is a node-exporter textfile path; empty disables metrics output.
	File string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LoggingConfig{Level: "info", Format: "text", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads the YAML file at path (skipped when path is empty) over the
// defaults and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvRootDir)); v != "" {
		c.RootDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsFile)); v != "" {
		c.Metrics.File = v
	}
}

// IgnorePath resolves the ignore list location.
func (c *Config) IgnorePath() string {
	if c.IgnoreFile != "" {
		return c.IgnoreFile
	}
	return filepath.Join(c.RootDir, chainref.IgnoreFileName)
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootDir) == "" {
		return ErrNoRootDir
	}
	fi, err := os.Stat(c.RootDir)
	if err != nil {
		return fmt.Errorf("root_dir: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("root_dir %q is not a directory", c.RootDir)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}
