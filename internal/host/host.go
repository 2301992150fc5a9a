// Package host implements the privileged side of the bridge: it owns the
// preference file, the installed version, the update download/install
// lifecycle and the app reset.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"panelctl/internal/bridge"
	"panelctl/internal/notify"
	"panelctl/internal/prefs"
	"panelctl/internal/update"
)

const devModeMessage = "Updates are disabled in development mode"

// Publisher delivers host events to connected panels.
type Publisher interface {
	Publish(name string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// Options configures a Host.
type Options struct {
	Version  string
	Prefs    *prefs.Store
	Updater  *update.Updater
	Notifier notify.Notifier
	// Restart is called after a successful install. Nil disables restarting.
	Restart      func() error
	RestartDelay time.Duration
}

// Host implements bridge.API.
type Host struct {
	version  string
	prefs    *prefs.Store
	updater  *update.Updater
	notifier notify.Notifier
	restart  func() error
	delay    time.Duration

	mu          sync.Mutex
	events      Publisher
	latest      *update.ReleaseInfo
	downloading bool
	downloaded  string
	bgCtx       context.Context
	bgCancel    context.CancelFunc
}

var _ bridge.API = (*Host)(nil)

// New returns a Host. Background downloads stop when Close is called.
func New(opts Options) *Host {
	if opts.RestartDelay == 0 {
		opts.RestartDelay = 500 * time.Millisecond
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		version:  opts.Version,
		prefs:    opts.Prefs,
		updater:  opts.Updater,
		notifier: opts.Notifier,
		restart:  opts.Restart,
		delay:    opts.RestartDelay,
		events:   nopPublisher{},
		bgCtx:    ctx,
		bgCancel: cancel,
	}
}

// SetPublisher routes host events to p.
func (h *Host) SetPublisher(p Publisher) {
	h.mu.Lock()
	h.events = p
	h.mu.Unlock()
}

// Close cancels any running download.
func (h *Host) Close() {
	h.bgCancel()
}

func (h *Host) publish(name string, payload any) {
	h.mu.Lock()
	p := h.events
	h.mu.Unlock()
	p.Publish(name, payload)
}

func (h *Host) GetDiscordRPCEnabled(ctx context.Context) (bool, error) {
	p, err := h.prefs.Load()
	if err != nil {
		return false, err
	}
	return p.DiscordRPCEnabled, nil
}

func (h *Host) SetDiscordRPCEnabled(ctx context.Context, enabled bool) error {
	err := h.prefs.Update(func(p *prefs.Preferences) {
		p.DiscordRPCEnabled = enabled
	})
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	log.WithField("enabled", enabled).Info("discord rpc preference updated")
	return nil
}

func (h *Host) GetVersion(ctx context.Context) (string, error) {
	return update.Normalize(h.version), nil
}

func (h *Host) CheckForUpdates(ctx context.Context) (bridge.UpdateCheckResult, error) {
	current := update.Normalize(h.version)
	if update.IsDevelopment(h.version) {
		return bridge.UpdateCheckResult{
			IsDevelopment: true,
			Message:       devModeMessage,
			Version:       current,
		}, nil
	}

	release, err := h.updater.CheckLatestVersion(ctx)
	if err != nil {
		log.Warnf("update check failed: %v", err)
		return bridge.UpdateCheckResult{
			Error:   "Failed to check for updates",
			Version: current,
		}, nil
	}

	if !update.CompareVersions(h.version, release.TagName) {
		return bridge.UpdateCheckResult{Version: current, CurrentVersion: current}, nil
	}

	h.mu.Lock()
	if h.latest == nil || h.latest.TagName != release.TagName {
		h.downloaded = ""
	}
	h.latest = release
	h.mu.Unlock()

	log.WithField("version", release.TagName).Info("update available")
	return bridge.UpdateCheckResult{
		UpdateAvailable: true,
		Version:         update.Normalize(release.TagName),
	}, nil
}

// DownloadUpdate starts the download in the background and answers at once;
// progress and completion arrive as events.
func (h *Host) DownloadUpdate(ctx context.Context) (bridge.DownloadResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.latest == nil {
		return bridge.DownloadResult{Error: "No update available"}, nil
	}
	if h.downloading {
		return bridge.DownloadResult{Started: true}, nil
	}
	release := h.latest
	version := update.Normalize(release.TagName)

	if h.downloaded == release.TagName && h.updater.HasStaged() {
		go h.publish(bridge.EventUpdateDownloaded, bridge.DownloadedPayload{Version: version})
		return bridge.DownloadResult{Started: true}, nil
	}

	h.downloading = true
	go h.download(release)
	return bridge.DownloadResult{Started: true}, nil
}

func (h *Host) download(release *update.ReleaseInfo) {
	version := update.Normalize(release.TagName)
	logger := log.WithField("version", release.TagName)
	logger.Info("downloading update")

	_, err := h.updater.Download(h.bgCtx, release, func(pct int) {
		h.publish(bridge.EventDownloadProgress, bridge.ProgressPayload{Percent: pct})
	})

	h.mu.Lock()
	h.downloading = false
	if err == nil {
		h.downloaded = release.TagName
	}
	h.mu.Unlock()

	if err != nil {
		logger.Errorf("download failed: %v", err)
		h.publish(bridge.EventUpdateError, bridge.ErrorPayload{Message: err.Error()})
		return
	}

	logger.Info("update downloaded")
	h.sendNotification("Update ready", fmt.Sprintf("Version %s is ready to install.", version))
	h.publish(bridge.EventUpdateDownloaded, bridge.DownloadedPayload{Version: version})
}

// InstallUpdate replaces the executable with the staged download and then
// restarts the process.
func (h *Host) InstallUpdate(ctx context.Context) (bridge.InstallResult, error) {
	h.mu.Lock()
	downloaded := h.downloaded
	h.mu.Unlock()

	if downloaded == "" || !h.updater.HasStaged() {
		return bridge.InstallResult{Error: "Update has not been downloaded"}, nil
	}
	if err := h.updater.ApplyStaged(); err != nil {
		log.Errorf("install failed: %v", err)
		return bridge.InstallResult{Error: err.Error()}, nil
	}
	log.WithField("version", downloaded).Info("update installed, restarting")

	h.mu.Lock()
	h.downloaded = ""
	h.latest = nil
	h.mu.Unlock()

	if h.restart != nil {
		time.AfterFunc(h.delay, func() {
			if err := h.restart(); err != nil {
				log.Errorf("restart after install: %v", err)
			}
		})
	}
	return bridge.InstallResult{Installing: true}, nil
}

// ResetApp clears all local data: preferences, update state and staged
// downloads.
func (h *Host) ResetApp(ctx context.Context) error {
	h.mu.Lock()
	if h.downloading {
		h.mu.Unlock()
		return errors.New("cannot reset while an update is downloading")
	}
	h.latest = nil
	h.downloaded = ""
	h.mu.Unlock()

	if err := h.prefs.Remove(); err != nil {
		return fmt.Errorf("remove preferences: %w", err)
	}
	if err := h.updater.ClearStaged(); err != nil {
		return fmt.Errorf("remove staged update: %w", err)
	}
	if err := os.Remove(h.updater.StatePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove update state: %w", err)
	}

	log.Info("app data reset")
	h.sendNotification("App reset", "All local data has been cleared.")
	return nil
}

func (h *Host) sendNotification(title, message string) {
	if err := h.notifier.Send(notify.Notification{Title: title, Message: message}); err != nil {
		log.Debugf("notify %s: %v", h.notifier.Name(), err)
	}
}
