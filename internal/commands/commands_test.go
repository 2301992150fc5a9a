package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panelctl/internal/bridge"
	"panelctl/internal/config"
	"panelctl/internal/output"
)

type checkAPI struct {
	bridge.API
	result bridge.UpdateCheckResult
	err    error
}

func (c checkAPI) CheckForUpdates(context.Context) (bridge.UpdateCheckResult, error) {
	return c.result, c.err
}

func jsonOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevMode := output.Out, output.JSONMode
	output.Out, output.JSONMode = &buf, true
	t.Cleanup(func() { output.Out, output.JSONMode = prevOut, prevMode })
	return &buf
}

func TestRunVersionJSON(t *testing.T) {
	buf := jsonOutput(t)

	require.NoError(t, RunVersion())

	var r struct {
		Success bool        `json:"success"`
		Data    versionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
	assert.True(t, r.Success)
	assert.Equal(t, Version, r.Data.Version)
}

func TestRunCheckUpdateAvailable(t *testing.T) {
	buf := jsonOutput(t)

	api := checkAPI{result: bridge.UpdateCheckResult{UpdateAvailable: true, Version: "2.0.0"}}
	require.NoError(t, runCheck(context.Background(), api))

	var r struct {
		Success bool                     `json:"success"`
		Data    bridge.UpdateCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &r))
	assert.True(t, r.Data.UpdateAvailable)
	assert.Equal(t, "2.0.0", r.Data.Version)
}

func TestRunCheckReportedError(t *testing.T) {
	buf := jsonOutput(t)

	api := checkAPI{result: bridge.UpdateCheckResult{Error: "Failed to check for updates"}}
	err := runCheck(context.Background(), api)
	require.EqualError(t, err, "Failed to check for updates")
	assert.Contains(t, buf.String(), `"success": false`)
}

func TestRunCheckBridgeFailure(t *testing.T) {
	jsonOutput(t)

	err := runCheck(context.Background(), checkAPI{err: bridge.ErrClosed})
	assert.True(t, errors.Is(err, bridge.ErrClosed))
}

func TestNewHostUsesConfiguredPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DataDir:      dir,
		UpdateAPIURL: "http://127.0.0.1:1/latest",
		Timing:       config.DefaultTiming(),
	}
	h := newHost(cfg, nil)
	defer h.Close()

	ctx := context.Background()
	require.NoError(t, h.SetDiscordRPCEnabled(ctx, false))
	_, err := os.Stat(cfg.PreferencesPath())
	assert.NoError(t, err)

	v, err := h.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, Version, v)
}
