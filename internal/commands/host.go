package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	log "github.com/sirupsen/logrus"

	"panelctl/internal/config"
	"panelctl/internal/host"
	"panelctl/internal/logging"
	"panelctl/internal/notify"
	"panelctl/internal/prefs"
	"panelctl/internal/ui"
	"panelctl/internal/update"
)

// newHost assembles a Host from cfg. restart may be nil.
func newHost(cfg config.Config, restart func() error) *host.Host {
	up := update.New(cfg.UpdateAPIURL, cfg.UpdateStatePath(), cfg.StagingDir())

	var notifiers []notify.Notifier
	if cfg.NotifyDesktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier())
	}
	if cfg.NotifyWebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.NotifyWebhookURL))
	}

	return host.New(host.Options{
		Version:  Version,
		Prefs:    prefs.NewStore(cfg.PreferencesPath()),
		Updater:  up,
		Notifier: notify.NewMultiNotifier(notifiers...),
		Restart:  restart,
	})
}

// RunHost serves the bridge until interrupted. After a successful install
// the server is stopped and the replaced executable relaunched.
func RunHost(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogPath("host")); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logging.InitSentry(cfg.SentryDSN, Version, "host"); err != nil {
		log.WithError(err).Warn("error reporting disabled")
	}
	defer logging.Flush()
	defer logging.RecoverPanic()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var relaunch atomic.Bool
	h := newHost(cfg, func() error {
		relaunch.Store(true)
		cancel()
		return nil
	})
	defer h.Close()

	if cfg.UpdateAutoCheck != "" {
		ac := host.NewAutoChecker(h, cfg.UpdateAutoCheck)
		if err := ac.Start(); err != nil {
			return err
		}
		defer ac.Stop()
	}

	if cfg.HostToken == "" {
		ui.ShowWarning("host.token is empty, the bridge accepts any local client")
	}
	ui.ShowSuccess("Host %s listening on %s", Version, cfg.HostAddr)

	srv := host.NewHTTPServer(h, cfg.HostToken)
	if err := srv.ListenAndServe(ctx, cfg.HostAddr); err != nil {
		log.WithError(err).Error("host server stopped")
		return err
	}

	if relaunch.Load() {
		log.Info("relaunching after update")
		return host.Relaunch()
	}
	ui.ShowInfo("Shutting down...")
	return nil
}
