package commands

import (
	"context"
	"errors"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"panelctl/internal/config"
	"panelctl/internal/logging"
	mcpserver "panelctl/internal/mcp"
)

// RunMCP serves MCP tools over stdio, forwarding each call to the host.
func RunMCP(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	// Stdout carries JSON-RPC; keep logs off it.
	logPath := cfg.LogPath("mcp")
	if logPath == "console" {
		log.SetOutput(os.Stderr)
	} else if err := logging.Init(cfg.LogLevel, logPath); err != nil {
		return err
	}

	client, err := dialHost(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := mcpserver.RunServer(ctx, client, Version); err != nil && !errors.Is(err, io.EOF) {
		log.WithError(err).Error("mcp server stopped")
		return err
	}
	return nil
}
