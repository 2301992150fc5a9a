// Package bridge is the only path between the panel and the host process: a
// fixed allow-list of seven request/response channels carried as JSON frames
// over a websocket, plus the host's update progress events.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
)

// Channel names one bridge operation.
type Channel string

const (
	ChannelGetDiscordRPCEnabled Channel = "get-discord-rpc-enabled"
	ChannelSetDiscordRPCEnabled Channel = "set-discord-rpc-enabled"
	ChannelGetVersion           Channel = "get-app-version"
	ChannelCheckForUpdates      Channel = "checkForUpdates"
	ChannelDownloadUpdate       Channel = "downloadUpdate"
	ChannelInstallUpdate        Channel = "installUpdate"
	ChannelResetApp             Channel = "reset-app"
)

// Channels is the allow-list, in declaration order.
var Channels = []Channel{
	ChannelGetDiscordRPCEnabled,
	ChannelSetDiscordRPCEnabled,
	ChannelGetVersion,
	ChannelCheckForUpdates,
	ChannelDownloadUpdate,
	ChannelInstallUpdate,
	ChannelResetApp,
}

// Allowed reports whether ch is on the allow-list.
func Allowed(ch Channel) bool {
	for _, c := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

var (
	// ErrNotAllowed is returned for channels outside the allow-list.
	ErrNotAllowed = errors.New("bridge: channel not allowed")
	// ErrClosed is returned by calls on a closed connection.
	ErrClosed = errors.New("bridge: connection closed")
)

// API is the set of operations exposed to the panel. The host implements it;
// Client forwards it over the wire unchanged.
type API interface {
	GetDiscordRPCEnabled(ctx context.Context) (bool, error)
	SetDiscordRPCEnabled(ctx context.Context, enabled bool) error
	GetVersion(ctx context.Context) (string, error)
	CheckForUpdates(ctx context.Context) (UpdateCheckResult, error)
	DownloadUpdate(ctx context.Context) (DownloadResult, error)
	InstallUpdate(ctx context.Context) (InstallResult, error)
	ResetApp(ctx context.Context) error
}

// UpdateCheckResult is a discriminated union; see the panel for how each
// shape is read. Version is preferred over CurrentVersion when both exist.
type UpdateCheckResult struct {
	Error           string `json:"error,omitempty"`
	IsDevelopment   bool   `json:"isDevelopment,omitempty"`
	Message         string `json:"message,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable,omitempty"`
	Version         string `json:"version,omitempty"`
	CurrentVersion  string `json:"currentVersion,omitempty"`
}

// DownloadResult is either {error} or the started marker.
type DownloadResult struct {
	Error   string `json:"error,omitempty"`
	Started bool   `json:"started,omitempty"`
}

// InstallResult is either {error} or the installing marker.
type InstallResult struct {
	Error      string `json:"error,omitempty"`
	Installing bool   `json:"installing,omitempty"`
}

// Host event names.
const (
	EventDownloadProgress = "download-progress"
	EventUpdateDownloaded = "update-downloaded"
	EventUpdateError      = "update-error"
)

// Event is a host-initiated frame.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ProgressPayload accompanies EventDownloadProgress.
type ProgressPayload struct {
	Percent int `json:"percent"`
}

// DownloadedPayload accompanies EventUpdateDownloaded.
type DownloadedPayload struct {
	Version string `json:"version"`
}

// ErrorPayload accompanies EventUpdateError.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// request is the panel→host frame.
type request struct {
	ID      string            `json:"id"`
	Channel Channel           `json:"channel"`
	Args    []json.RawMessage `json:"args,omitempty"`
}

// frame is any host→panel message: a response when ID is set, an event when
// Event is set.
type frame struct {
	ID      string          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
