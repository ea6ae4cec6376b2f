package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const stateDir = ".bookplus"

// Config is resolved once per process: derived paths from the vault, then the
// optional YAML file, then BOOKPLUS_* environment variables.
type Config struct {
	VaultPath  string `yaml:"-"`
	DBPath     string `yaml:"-"`
	ReportsDir string `yaml:"-"`
	LogPath    string `yaml:"-"`

	UserKey              string        `yaml:"user"                  env:"BOOKPLUS_USER"`
	LogLevel             string        `yaml:"log_level"             env:"BOOKPLUS_LOG_LEVEL"`
	ContentVersion       string        `yaml:"content_version"       env:"BOOKPLUS_CONTENT_VERSION"`
	SnapshotInterval     time.Duration `yaml:"snapshot_interval"     env:"BOOKPLUS_SNAPSHOT_INTERVAL"`
	RemoteURL            string        `yaml:"remote_url"            env:"BOOKPLUS_REMOTE_URL"`
	HTTPTimeout          time.Duration `yaml:"http_timeout"          env:"BOOKPLUS_HTTP_TIMEOUT"`
	ReconcileConcurrency int           `yaml:"reconcile_concurrency" env:"BOOKPLUS_RECONCILE_CONCURRENCY"`
	DiscardStaleVariants bool          `yaml:"discard_stale_variants" env:"BOOKPLUS_DISCARD_STALE_VARIANTS"`
	ListenAddr           string        `yaml:"listen_addr"           env:"BOOKPLUS_LISTEN_ADDR"`
	AnalyzerPlugin       string        `yaml:"analyzer_plugin"       env:"BOOKPLUS_ANALYZER_PLUGIN"`
}

func New(vaultPath string) (Config, error) {
	if vaultPath == "" {
		return Config{}, fmt.Errorf("vault path is required")
	}
	cfg := Config{
		VaultPath:            vaultPath,
		DBPath:               filepath.Join(vaultPath, stateDir, "bookplus.db"),
		ReportsDir:           filepath.Join(vaultPath, stateDir, "reports"),
		LogPath:              filepath.Join(vaultPath, stateDir, "bookplus.log"),
		UserKey:              "local",
		LogLevel:             "info",
		ContentVersion:       "full",
		SnapshotInterval:     2 * time.Second,
		HTTPTimeout:          10 * time.Second,
		ReconcileConcurrency: 4,
		ListenAddr:           "127.0.0.1:8000",
	}
	if err := cfg.loadFile(filepath.Join(vaultPath, stateDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.UserKey) == "" {
		return fmt.Errorf("user key is required")
	}
	switch c.ContentVersion {
	case "full", "condensed", "summary", "auto":
	default:
		return fmt.Errorf("invalid content version %q", c.ContentVersion)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}
	if c.ReconcileConcurrency < 1 {
		return fmt.Errorf("reconcile concurrency must be at least 1")
	}
	return nil
}

// StateDir is the per-vault directory holding the database, logs and reports.
func (c Config) StateDir() string {
	return filepath.Join(c.VaultPath, stateDir)
}
