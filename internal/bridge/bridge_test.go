package bridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	enabled bool
	calls   []Channel

	check    UpdateCheckResult
	resetErr error
}

func (f *fakeAPI) record(ch Channel) {
	f.mu.Lock()
	f.calls = append(f.calls, ch)
	f.mu.Unlock()
}

func (f *fakeAPI) GetDiscordRPCEnabled(ctx context.Context) (bool, error) {
	f.record(ChannelGetDiscordRPCEnabled)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled, nil
}

func (f *fakeAPI) SetDiscordRPCEnabled(ctx context.Context, enabled bool) error {
	f.record(ChannelSetDiscordRPCEnabled)
	f.mu.Lock()
	f.enabled = enabled
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) GetVersion(ctx context.Context) (string, error) {
	f.record(ChannelGetVersion)
	return "1.4.0", nil
}

func (f *fakeAPI) CheckForUpdates(ctx context.Context) (UpdateCheckResult, error) {
	f.record(ChannelCheckForUpdates)
	return f.check, nil
}

func (f *fakeAPI) DownloadUpdate(ctx context.Context) (DownloadResult, error) {
	f.record(ChannelDownloadUpdate)
	return DownloadResult{Started: true}, nil
}

func (f *fakeAPI) InstallUpdate(ctx context.Context) (InstallResult, error) {
	f.record(ChannelInstallUpdate)
	return InstallResult{Error: "disk full"}, nil
}

func (f *fakeAPI) ResetApp(ctx context.Context) error {
	f.record(ChannelResetApp)
	return f.resetErr
}

func (f *fakeAPI) called() []Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Channel(nil), f.calls...)
}

func setup(t *testing.T, api API) (*Server, *Client) {
	t.Helper()
	srv := NewServer(api)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, err := Dial(context.Background(), url, DialOptions{MaxElapsed: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return srv, c
}

func TestAllowed(t *testing.T) {
	assert.Len(t, Channels, 7)
	for _, ch := range Channels {
		assert.True(t, Allowed(ch), ch)
	}
	assert.False(t, Allowed("openExternal"))
	assert.False(t, Allowed(""))
}

func TestClient_RoundTrip(t *testing.T) {
	api := &fakeAPI{check: UpdateCheckResult{UpdateAvailable: true, Version: "2.0.0"}}
	_, c := setup(t, api)
	ctx := context.Background()

	enabled, err := c.GetDiscordRPCEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, c.SetDiscordRPCEnabled(ctx, true))
	enabled, err = c.GetDiscordRPCEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	v, err := c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v)

	check, err := c.CheckForUpdates(ctx)
	require.NoError(t, err)
	assert.Equal(t, UpdateCheckResult{UpdateAvailable: true, Version: "2.0.0"}, check)

	dl, err := c.DownloadUpdate(ctx)
	require.NoError(t, err)
	assert.True(t, dl.Started)

	inst, err := c.InstallUpdate(ctx)
	require.NoError(t, err, "logical errors are payload, not transport failures")
	assert.Equal(t, "disk full", inst.Error)

	require.NoError(t, c.ResetApp(ctx))

	assert.Equal(t, []Channel{
		ChannelGetDiscordRPCEnabled,
		ChannelSetDiscordRPCEnabled,
		ChannelGetDiscordRPCEnabled,
		ChannelGetVersion,
		ChannelCheckForUpdates,
		ChannelDownloadUpdate,
		ChannelInstallUpdate,
		ChannelResetApp,
	}, api.called())
}

func TestClient_HostRejection(t *testing.T) {
	api := &fakeAPI{resetErr: errors.New("profile locked")}
	_, c := setup(t, api)

	err := c.ResetApp(context.Background())
	require.Error(t, err)
	assert.True(t, IsHostError(err))
	assert.Contains(t, err.Error(), "profile locked")
}

func TestServer_RejectsUnlistedChannel(t *testing.T) {
	api := &fakeAPI{}
	_, c := setup(t, api)

	err := c.call(context.Background(), Channel("openExternal"), nil, "https://example.com")
	require.Error(t, err)
	assert.True(t, IsHostError(err))
	assert.Contains(t, err.Error(), ErrNotAllowed.Error())
	assert.Empty(t, api.called())
}

func TestServer_SetRequiresOneArgument(t *testing.T) {
	api := &fakeAPI{}
	_, c := setup(t, api)

	err := c.call(context.Background(), ChannelSetDiscordRPCEnabled, nil)
	require.Error(t, err)
	assert.Empty(t, api.called())
}

func TestServer_PublishEvents(t *testing.T) {
	srv, c := setup(t, &fakeAPI{})

	// A completed call guarantees the server registered the connection.
	_, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, srv.ConnCount())

	srv.Publish(EventDownloadProgress, ProgressPayload{Percent: 42})
	srv.Publish(EventUpdateDownloaded, DownloadedPayload{Version: "2.0.0"})

	ev := <-c.Events()
	assert.Equal(t, EventDownloadProgress, ev.Name)
	var p ProgressPayload
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, 42, p.Percent)

	ev = <-c.Events()
	assert.Equal(t, EventUpdateDownloaded, ev.Name)
	var d DownloadedPayload
	require.NoError(t, ev.Decode(&d))
	assert.Equal(t, "2.0.0", d.Version)
}

func TestClient_FullBufferKeepsNewestEvents(t *testing.T) {
	srv, c := setup(t, &fakeAPI{})
	ctx := context.Background()
	_, err := c.GetVersion(ctx)
	require.NoError(t, err)

	const extra = 10
	for i := 0; i < eventBuffer+extra; i++ {
		srv.Publish(EventDownloadProgress, ProgressPayload{Percent: i})
	}
	srv.Publish(EventUpdateDownloaded, DownloadedPayload{Version: "2.0.0"})

	// The response frame follows every event on the wire.
	_, err = c.GetVersion(ctx)
	require.NoError(t, err)
	require.Len(t, c.Events(), eventBuffer)

	first := <-c.Events()
	var p ProgressPayload
	require.NoError(t, first.Decode(&p))
	assert.Equal(t, extra+1, p.Percent)

	var last Event
	for i := 1; i < eventBuffer; i++ {
		last = <-c.Events()
	}
	assert.Equal(t, EventUpdateDownloaded, last.Name)
}

func TestServer_OriginCheck(t *testing.T) {
	ts := httptest.NewServer(NewServer(&fakeAPI{}))
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"localhost", "http://localhost:3000", true},
		{"loopback v4", "http://127.0.0.1:47600", true},
		{"loopback v6", "http://[::1]:47600", true},
		{"foreign site", "https://evil.example", false},
		{"lookalike", "http://localhost.evil.example", false},
		{"opaque", "null", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			ws, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.ok {
				require.NoError(t, err)
				ws.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestClient_ClosedConnection(t *testing.T) {
	_, c := setup(t, &fakeAPI{})
	require.NoError(t, c.Close())
	<-c.Done()

	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, open := <-c.Events()
	assert.False(t, open)
}

func TestDial_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer ts.Close()

	start := time.Now()
	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"), DialOptions{Token: "nope", MaxElapsed: 5 * time.Second})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "auth failures are not retried")
}

func TestDial_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/bridge", DialOptions{})
	assert.Error(t, err)
}
