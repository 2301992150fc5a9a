package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "panelctl"
	defaultHostAddr   = "127.0.0.1:47600"
	defaultRepo       = "panelctl/panelctl"
	defaultAutoCheck  = "@hourly"
)

// Config holds the settings shared by the panel and the host process.
type Config struct {
	HostAddr  string
	HostToken string

	// DataDir holds preferences, update state, staged downloads and logs.
	DataDir string

	UpdateRepo   string
	UpdateAPIURL string
	// UpdateAutoCheck is a cron spec for background checks by the host.
	// Empty disables them.
	UpdateAutoCheck string

	LogLevel string
	// LogFile is a path, "console", or empty for the default file under DataDir.
	LogFile string

	NotifyDesktop    bool
	NotifyWebhookURL string

	// SentryDSN enables error reporting when set.
	SentryDSN string

	Timing Timing
}

// Timing holds the fixed delays of the panel flows.
type Timing struct {
	CheckErrorRevert    time.Duration
	DevMessageRevert    time.Duration
	UpToDateRevert      time.Duration
	DownloadFallback    time.Duration
	DownloadErrorRevert time.Duration
	InstallErrorRevert  time.Duration
	ReloadDelay         time.Duration
}

// DefaultTiming returns the stock panel delays.
func DefaultTiming() Timing {
	return Timing{
		CheckErrorRevert:    5 * time.Second,
		DevMessageRevert:    3 * time.Second,
		UpToDateRevert:      2 * time.Second,
		DownloadFallback:    3 * time.Second,
		DownloadErrorRevert: 3 * time.Second,
		InstallErrorRevert:  3 * time.Second,
		ReloadDelay:         time.Second,
	}
}

// DefaultDataDir returns ~/.panelctl.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".panelctl"
	}
	return filepath.Join(home, ".panelctl")
}

// LatestReleaseURL returns the GitHub API endpoint for the latest release of repo.
func LatestReleaseURL(repo string) string {
	return "https://api.github.com/repos/" + repo + "/releases/latest"
}

// Load reads configuration from file (optional) and PANELCTL_* environment
// variables. An explicit path must exist; otherwise panelctl.yaml is searched
// in the working directory and the default data dir.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PANELCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dataDir := DefaultDataDir()
	t := DefaultTiming()

	v.SetDefault("host.addr", defaultHostAddr)
	v.SetDefault("host.token", "")
	v.SetDefault("data.dir", dataDir)
	v.SetDefault("update.repo", defaultRepo)
	v.SetDefault("update.api_url", "")
	v.SetDefault("update.auto_check", defaultAutoCheck)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("notify.desktop", true)
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("telemetry.sentry_dsn", "")
	v.SetDefault("timing.check_error_revert", t.CheckErrorRevert)
	v.SetDefault("timing.dev_message_revert", t.DevMessageRevert)
	v.SetDefault("timing.up_to_date_revert", t.UpToDateRevert)
	v.SetDefault("timing.download_fallback", t.DownloadFallback)
	v.SetDefault("timing.download_error_revert", t.DownloadErrorRevert)
	v.SetDefault("timing.install_error_revert", t.InstallErrorRevert)
	v.SetDefault("timing.reload_delay", t.ReloadDelay)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(dataDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		HostAddr:        strings.TrimSpace(v.GetString("host.addr")),
		HostToken:       v.GetString("host.token"),
		DataDir:         strings.TrimSpace(v.GetString("data.dir")),
		UpdateRepo:      strings.TrimSpace(v.GetString("update.repo")),
		UpdateAPIURL:    strings.TrimSpace(v.GetString("update.api_url")),
		UpdateAutoCheck: strings.TrimSpace(v.GetString("update.auto_check")),
		LogLevel:        v.GetString("log.level"),
		LogFile:         v.GetString("log.file"),

		NotifyDesktop:    v.GetBool("notify.desktop"),
		NotifyWebhookURL: strings.TrimSpace(v.GetString("notify.webhook_url")),

		SentryDSN: strings.TrimSpace(v.GetString("telemetry.sentry_dsn")),

		Timing: Timing{
			CheckErrorRevert:    v.GetDuration("timing.check_error_revert"),
			DevMessageRevert:    v.GetDuration("timing.dev_message_revert"),
			UpToDateRevert:      v.GetDuration("timing.up_to_date_revert"),
			DownloadFallback:    v.GetDuration("timing.download_fallback"),
			DownloadErrorRevert: v.GetDuration("timing.download_error_revert"),
			InstallErrorRevert:  v.GetDuration("timing.install_error_revert"),
			ReloadDelay:         v.GetDuration("timing.reload_delay"),
		},
	}
	if cfg.UpdateAPIURL == "" {
		cfg.UpdateAPIURL = LatestReleaseURL(cfg.UpdateRepo)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default away.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.HostAddr); err != nil {
		return fmt.Errorf("invalid host.addr %q: %w", c.HostAddr, err)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data.dir must not be empty")
	}
	if c.UpdateRepo == "" || strings.Count(c.UpdateRepo, "/") != 1 {
		return fmt.Errorf("update.repo must look like owner/name, got %q", c.UpdateRepo)
	}
	if c.UpdateAutoCheck != "" {
		if _, err := cron.ParseStandard(c.UpdateAutoCheck); err != nil {
			return fmt.Errorf("invalid update.auto_check %q: %w", c.UpdateAutoCheck, err)
		}
	}
	for name, d := range map[string]time.Duration{
		"check_error_revert":    c.Timing.CheckErrorRevert,
		"dev_message_revert":    c.Timing.DevMessageRevert,
		"up_to_date_revert":     c.Timing.UpToDateRevert,
		"download_fallback":     c.Timing.DownloadFallback,
		"download_error_revert": c.Timing.DownloadErrorRevert,
		"install_error_revert":  c.Timing.InstallErrorRevert,
		"reload_delay":          c.Timing.ReloadDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// BridgeURL returns the websocket URL the panel dials.
func (c Config) BridgeURL() string {
	return "ws://" + c.HostAddr + "/bridge"
}

// PreferencesPath returns the preference file inside the data dir.
func (c Config) PreferencesPath() string {
	return filepath.Join(c.DataDir, "preferences.yaml")
}

// UpdateStatePath returns the persisted update-check state file.
func (c Config) UpdateStatePath() string {
	return filepath.Join(c.DataDir, ".update-state.json")
}

// StagingDir returns the directory downloads are staged in.
func (c Config) StagingDir() string {
	return filepath.Join(c.DataDir, "update")
}

// LogPath returns the log destination for the named process ("panel", "host").
func (c Config) LogPath(name string) string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "logs", name+".log")
}
