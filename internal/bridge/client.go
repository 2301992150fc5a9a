package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// eventBuffer bounds queued host events. When the panel falls behind, the
// oldest queued event is dropped to make room for the newest.
const eventBuffer = 64

// Client is the panel side of the bridge. It implements API by forwarding
// each call as one request frame.
type Client struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan frame
	err     error

	events chan Event
	done   chan struct{}
}

var _ API = (*Client)(nil)

// DialOptions controls how Dial reaches the host.
type DialOptions struct {
	Token string
	// MaxElapsed bounds the retry window while the host is starting.
	MaxElapsed time.Duration
}

// Dial connects to the host's bridge endpoint, retrying with exponential
// backoff until MaxElapsed or ctx ends. An auth rejection is not retried.
func Dial(ctx context.Context, url string, opts DialOptions) (*Client, error) {
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = 10 * time.Second
	}
	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	expBackOff := backoff.WithContext(&backoff.ExponentialBackOff{
		InitialInterval:     200 * time.Millisecond,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      opts.MaxElapsed,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}, ctx)

	var ws *websocket.Conn
	err := backoff.Retry(func() error {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusUnauthorized {
				return backoff.Permanent(fmt.Errorf("bridge rejected token: %w", err))
			}
			log.Debugf("[bridge] dial %s: %v", url, err)
			return err
		}
		ws = conn
		return nil
	}, expBackOff)
	if err != nil {
		return nil, fmt.Errorf("connect to host at %s: %w", url, err)
	}
	return NewClient(ws), nil
}

// NewClient wraps an established websocket connection.
func NewClient(ws *websocket.Conn) *Client {
	c := &Client{
		ws:      ws,
		pending: make(map[string]chan frame),
		events:  make(chan Event, eventBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Events delivers host events. The channel is closed when the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close terminates the connection; pending calls fail with ErrClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.ws.Close()
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		if c.err == nil {
			c.err = ErrClosed
		}
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.events)
		close(c.done)
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[bridge] connection lost: %v", err)
			}
			c.mu.Lock()
			c.err = fmt.Errorf("%w: %v", ErrClosed, err)
			c.mu.Unlock()
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			log.Warnf("[bridge] dropping malformed frame: %v", err)
			continue
		}

		if f.Event != "" {
			c.deliver(Event{Name: f.Event, Payload: f.Payload})
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[f.ID]
		delete(c.pending, f.ID)
		c.mu.Unlock()
		if ok {
			ch <- f
		}
	}
}

// deliver queues ev without blocking the read loop. readLoop is the only
// sender, so evicting one queued event always frees a slot.
func (c *Client) deliver(ev Event) {
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case old := <-c.events:
			log.Warnf("[bridge] event buffer full, dropping %s", old.Name)
		default:
		}
	}
}

// call sends one request and waits for its response. out may be nil.
func (c *Client) call(ctx context.Context, ch Channel, out any, args ...any) error {
	req := request{ID: uuid.NewString(), Channel: ch}
	for _, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("%s: encode argument: %w", ch, err)
		}
		req.Args = append(req.Args, data)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp := make(chan frame, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[req.ID] = resp
	c.mu.Unlock()

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return fmt.Errorf("%s: %w", ch, err)
	}

	select {
	case f, ok := <-resp:
		if !ok {
			return fmt.Errorf("%s: %w", ch, ErrClosed)
		}
		if f.Error != "" {
			return &HostError{Channel: ch, Message: f.Error}
		}
		if out != nil && len(f.Result) > 0 {
			if err := json.Unmarshal(f.Result, out); err != nil {
				return fmt.Errorf("%s: decode result: %w", ch, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.forget(req.ID)
		return ctx.Err()
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// HostError is a rejection reported by the host, surfaced unchanged.
type HostError struct {
	Channel Channel
	Message string
}

func (e *HostError) Error() string {
	return string(e.Channel) + ": " + e.Message
}

// IsHostError reports whether err is a rejection from the host rather than a
// transport failure.
func IsHostError(err error) bool {
	var he *HostError
	return errors.As(err, &he)
}

func (c *Client) GetDiscordRPCEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := c.call(ctx, ChannelGetDiscordRPCEnabled, &enabled)
	return enabled, err
}

func (c *Client) SetDiscordRPCEnabled(ctx context.Context, enabled bool) error {
	return c.call(ctx, ChannelSetDiscordRPCEnabled, nil, enabled)
}

func (c *Client) GetVersion(ctx context.Context) (string, error) {
	var v string
	err := c.call(ctx, ChannelGetVersion, &v)
	return v, err
}

func (c *Client) CheckForUpdates(ctx context.Context) (UpdateCheckResult, error) {
	var r UpdateCheckResult
	err := c.call(ctx, ChannelCheckForUpdates, &r)
	return r, err
}

func (c *Client) DownloadUpdate(ctx context.Context) (DownloadResult, error) {
	var r DownloadResult
	err := c.call(ctx, ChannelDownloadUpdate, &r)
	return r, err
}

func (c *Client) InstallUpdate(ctx context.Context) (InstallResult, error) {
	var r InstallResult
	err := c.call(ctx, ChannelInstallUpdate, &r)
	return r, err
}

func (c *Client) ResetApp(ctx context.Context) error {
	return c.call(ctx, ChannelResetApp, nil)
}
