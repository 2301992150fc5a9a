package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panelctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, defaultHostAddr, cfg.HostAddr)
	assert.Equal(t, filepath.Join(home, ".panelctl"), cfg.DataDir)
	assert.Equal(t, LatestReleaseURL(defaultRepo), cfg.UpdateAPIURL)
	assert.Equal(t, DefaultTiming(), cfg.Timing)
	assert.Equal(t, "ws://127.0.0.1:47600/bridge", cfg.BridgeURL())
	assert.Equal(t, defaultAutoCheck, cfg.UpdateAutoCheck)
	assert.True(t, cfg.NotifyDesktop)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
host:
  addr: 127.0.0.1:9000
  token: secret
data:
  dir: /tmp/panel-data
update:
  repo: acme/desk
timing:
  download_fallback: 250ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HostAddr)
	assert.Equal(t, "secret", cfg.HostToken)
	assert.Equal(t, "https://api.github.com/repos/acme/desk/releases/latest", cfg.UpdateAPIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.DownloadFallback)
	assert.Equal(t, 5*time.Second, cfg.Timing.CheckErrorRevert)
	assert.Equal(t, filepath.Join("/tmp/panel-data", "preferences.yaml"), cfg.PreferencesPath())
	assert.Equal(t, filepath.Join("/tmp/panel-data", "logs", "host.log"), cfg.LogPath("host"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "host:\n  addr: 127.0.0.1:9000\n")
	t.Setenv("PANELCTL_HOST_ADDR", "127.0.0.1:9100")
	t.Setenv("PANELCTL_LOG_FILE", "console")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.HostAddr)
	assert.Equal(t, "console", cfg.LogPath("panel"))
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		HostAddr:   defaultHostAddr,
		DataDir:    "/tmp/x",
		UpdateRepo: "a/b",
		Timing:     DefaultTiming(),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad addr", func(c *Config) { c.HostAddr = "no-port" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad repo", func(c *Config) { c.UpdateRepo = "just-a-name" }},
		{"zero timing", func(c *Config) { c.Timing.ReloadDelay = 0 }},
		{"bad auto check", func(c *Config) { c.UpdateAutoCheck = "every tuesday" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
