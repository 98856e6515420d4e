// ABOUTME: Application configuration loaded from XDG config dir, .env, and environment
// ABOUTME: Controls logging, simulated latency, HTTP address, and the optional snapshot file
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/harperreed/dealdesk/db"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	LatencyOff      = "off"
	LatencyOriginal = "original"
)

type Config struct {
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	Latency      string `yaml:"latency"`
	HTTPAddr     string `yaml:"http_addr"`
	SnapshotPath string `yaml:"snapshot_path,omitempty"`
	RecentLimit  int    `yaml:"recent_limit"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "console",
		Latency:     LatencyOriginal,
		HTTPAddr:    "127.0.0.1:8080",
		RecentLimit: 8,
	}
}

// ConfigDir returns the XDG-compliant directory for dealdesk configuration.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "dealdesk")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultSnapshotPath is where snapshots go when none is configured.
func DefaultSnapshotPath() string {
	return filepath.Join(xdg.DataHome, "dealdesk", "dealdesk.db")
}

// Load reads the YAML config at path (ConfigPath when empty). A missing file
// yields defaults; a malformed one is an error. Environment variables
// override file values:
// - DEALDESK_LOG_LEVEL
// - DEALDESK_LOG_FORMAT
// - DEALDESK_LATENCY
// - DEALDESK_HTTP_ADDR
// - DEALDESK_SNAPSHOT
// - DEALDESK_RECENT_LIMIT
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.StoreLatency(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// replacing variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if level := os.Getenv("DEALDESK_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("DEALDESK_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
	if latency := os.Getenv("DEALDESK_LATENCY"); latency != "" {
		cfg.Latency = latency
	}
	if addr := os.Getenv("DEALDESK_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if snapshot := os.Getenv("DEALDESK_SNAPSHOT"); snapshot != "" {
		cfg.SnapshotPath = snapshot
	}
	if limit := os.Getenv("DEALDESK_RECENT_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid DEALDESK_RECENT_LIMIT %q: %w", limit, err)
		}
		cfg.RecentLimit = n
	}
	return nil
}

// StoreLatency turns the latency setting into a db.Latency. Besides "off"
// and "original", a positive number scales the original delays.
func (c *Config) StoreLatency() (db.Latency, error) {
	switch strings.ToLower(strings.TrimSpace(c.Latency)) {
	case "", LatencyOff:
		return db.NoLatency, nil
	case LatencyOriginal:
		return db.OriginalLatency(), nil
	}

	factor, err := strconv.ParseFloat(c.Latency, 64)
	if err != nil || factor < 0 {
		return nil, fmt.Errorf("invalid latency %q: want off, original, or a non-negative scale", c.Latency)
	}
	return db.OriginalLatency().Scaled(factor), nil
}

// Save writes cfg as YAML to path (ConfigPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
