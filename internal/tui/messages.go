package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"panelctl/internal/bridge"
)

const callTimeout = 30 * time.Second

type rpcLoadedMsg struct {
	enabled bool
	err     error
}

// rpcSavedMsg carries the value that was sent, not the value before the click.
type rpcSavedMsg struct {
	enabled bool
	err     error
}

// versionLoadedMsg applies only while the display generation still equals gen.
type versionLoadedMsg struct {
	gen     uint64
	version string
	err     error
}

type checkResultMsg struct {
	result bridge.UpdateCheckResult
	err    error
}

type downloadResultMsg struct {
	result bridge.DownloadResult
	err    error
}

type installResultMsg struct {
	result bridge.InstallResult
	err    error
}

type resetResultMsg struct{ err error }

type hostEventMsg struct{ event bridge.Event }

type eventsClosedMsg struct{}

type textRevertMsg struct {
	gen          uint64
	text         string
	fetchVersion bool
}

type phaseRevertMsg struct {
	gen uint64
	to  Phase
}

type downloadFallbackMsg struct{ gen uint64 }

type reloadMsg struct{}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

func loadRPC(api bridge.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		enabled, err := api.GetDiscordRPCEnabled(ctx)
		return rpcLoadedMsg{enabled: enabled, err: err}
	}
}

func saveRPC(api bridge.API, enabled bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		return rpcSavedMsg{enabled: enabled, err: api.SetDiscordRPCEnabled(ctx, enabled)}
	}
}

func loadVersion(api bridge.API, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		v, err := api.GetVersion(ctx)
		return versionLoadedMsg{gen: gen, version: v, err: err}
	}
}

func checkForUpdates(api bridge.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		r, err := api.CheckForUpdates(ctx)
		return checkResultMsg{result: r, err: err}
	}
}

func downloadUpdate(api bridge.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		r, err := api.DownloadUpdate(ctx)
		return downloadResultMsg{result: r, err: err}
	}
}

func installUpdate(api bridge.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		r, err := api.InstallUpdate(ctx)
		return installResultMsg{result: r, err: err}
	}
}

func resetApp(api bridge.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := callCtx()
		defer cancel()
		return resetResultMsg{err: api.ResetApp(ctx)}
	}
}

// waitForEvent blocks on the host event stream. It is re-armed after every
// delivered event.
func waitForEvent(events <-chan bridge.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return hostEventMsg{event: ev}
	}
}
