package commands

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"panelctl/internal/bridge"
	"panelctl/internal/config"
	"panelctl/internal/host"
	"panelctl/internal/logging"
	"panelctl/internal/tui"
)

const dialTimeout = 10 * time.Second

// dialHost connects to the configured host's bridge.
func dialHost(ctx context.Context, cfg config.Config) (*bridge.Client, error) {
	return bridge.Dial(ctx, cfg.BridgeURL(), bridge.DialOptions{
		Token:      cfg.HostToken,
		MaxElapsed: dialTimeout,
	})
}

// startEmbeddedHost serves a host on an ephemeral loopback port and returns
// its bridge URL. Installs are staged but never relaunch the process.
func startEmbeddedHost(ctx context.Context, cfg config.Config) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	h := newHost(cfg, nil)
	srv := host.NewHTTPServer(h, cfg.HostToken)
	go func() {
		defer h.Close()
		if err := srv.Serve(ctx, ln); err != nil {
			log.WithError(err).Error("embedded host stopped")
		}
	}()
	return "ws://" + ln.Addr().String() + "/bridge", nil
}

// RunPanel opens the control panel. With embedded set the host runs in this
// process instead of being dialed at host.addr.
func RunPanel(cfgPath string, embedded bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	// The terminal belongs to the panel, so logs always go to a file.
	logPath := cfg.LogPath("panel")
	if logPath == "console" {
		logPath = filepath.Join(cfg.DataDir, "logs", "panel.log")
	}
	if err := logging.Init(cfg.LogLevel, logPath); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logging.InitSentry(cfg.SentryDSN, Version, "panel"); err != nil {
		log.WithError(err).Warn("error reporting disabled")
	}
	defer logging.Flush()
	defer logging.RecoverPanic()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := cfg.BridgeURL()
	if embedded {
		if url, err = startEmbeddedHost(ctx, cfg); err != nil {
			return err
		}
	}

	client, err := bridge.Dial(ctx, url, bridge.DialOptions{Token: cfg.HostToken, MaxElapsed: dialTimeout})
	if err != nil {
		return fmt.Errorf("%w (is `panelctl host` running?)", err)
	}
	defer client.Close()

	return tui.Run(tui.Options{
		Bridge: client,
		Events: client.Events(),
		Timing: cfg.Timing,
	})
}
