// ABOUTME: Tests for configuration loading
// ABOUTME: Covers XDG paths, defaults, YAML files, env overrides, and latency parsing
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/harperreed/dealdesk/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPath(t *testing.T) {
	path := ConfigPath()

	assert.True(t, strings.HasPrefix(path, filepath.Join(xdg.ConfigHome, "dealdesk")))
	assert.Equal(t, "config.yaml", filepath.Base(path))
}

func TestLoad_NotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
latency: "off"
http_addr: ":9000"
recent_limit: 5
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat, "unset fields keep defaults")
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 5, cfg.RecentLimit)

	latency, err := cfg.StoreLatency()
	require.NoError(t, err)
	assert.Equal(t, db.NoLatency, latency)
}

func TestDefaultLatencyIsOriginal(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LatencyOriginal, cfg.Latency)

	latency, err := cfg.StoreLatency()
	require.NoError(t, err)
	assert.Equal(t, db.OriginalLatency(), latency)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEALDESK_LOG_LEVEL", "warn")
	t.Setenv("DEALDESK_LATENCY", "0.5")
	t.Setenv("DEALDESK_SNAPSHOT", "/tmp/crm.db")
	t.Setenv("DEALDESK_RECENT_LIMIT", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/crm.db", cfg.SnapshotPath)
	assert.Equal(t, 12, cfg.RecentLimit)

	latency, err := cfg.StoreLatency()
	require.NoError(t, err)
	fixed, ok := latency.(db.FixedLatency)
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, fixed[db.OpCreate])
}

func TestLoad_InvalidLatency(t *testing.T) {
	t.Setenv("DEALDESK_LATENCY", "sometimes")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "invalid latency")
}

func TestStoreLatencyOff(t *testing.T) {
	cfg := &Config{Latency: LatencyOff}
	latency, err := cfg.StoreLatency()
	require.NoError(t, err)
	assert.Equal(t, db.NoLatency, latency)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	original := &Config{
		LogLevel:     "error",
		LogFormat:    "json",
		Latency:      LatencyOriginal,
		HTTPAddr:     ":8181",
		SnapshotPath: "/var/lib/dealdesk.db",
		RecentLimit:  3,
	}

	require.NoError(t, Save(original, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DEALDESK_HTTP_ADDR=:7070\n"), 0600))
	t.Setenv("DEALDESK_HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("DEALDESK_HTTP_ADDR"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, ":7070", os.Getenv("DEALDESK_HTTP_ADDR"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
