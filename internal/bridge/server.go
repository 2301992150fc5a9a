package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// upgrader accepts panels, which send no Origin, and pages served from
// loopback. Browser pages from any other origin are refused.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     loopbackOrigin,
}

// loopbackOrigin reports whether the handshake carries no Origin or one whose
// host is localhost or a loopback address.
func loopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Server dispatches allow-listed requests to an API and publishes host events
// to every connected panel.
type Server struct {
	api API

	mu    sync.Mutex
	conns map[*serverConn]struct{}
}

type serverConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *serverConn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// NewServer returns a Server forwarding to api.
func NewServer(api API) *Server {
	return &Server{
		api:   api,
		conns: make(map[*serverConn]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("[bridge] websocket upgrade error: %v", err)
		return
	}
	s.ServeConn(r.Context(), ws)
}

// ServeConn reads requests from ws until it closes. Each request is handled
// in its own goroutine so a slow operation does not stall the others.
func (s *Server) ServeConn(ctx context.Context, ws *websocket.Conn) {
	c := &serverConn{ws: ws}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		ws.Close()
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[bridge] read error: %v", err)
			}
			return
		}

		var req request
		if err := json.Unmarshal(raw, &req); err != nil || req.ID == "" {
			log.Warnf("[bridge] dropping malformed request: %s", raw)
			continue
		}

		go func() {
			result, err := s.dispatch(ctx, req)
			out := frame{ID: req.ID}
			if err != nil {
				out.Error = err.Error()
			} else if result != nil {
				out.Result, err = json.Marshal(result)
				if err != nil {
					out.Error = fmt.Sprintf("encode result: %v", err)
				}
			}
			if err := c.write(out); err != nil {
				log.Debugf("[bridge] write response %s: %v", req.Channel, err)
			}
		}()
	}
}

func (s *Server) dispatch(ctx context.Context, req request) (any, error) {
	if !Allowed(req.Channel) {
		log.Warnf("[bridge] rejected channel %q", req.Channel)
		return nil, fmt.Errorf("%w: %s", ErrNotAllowed, req.Channel)
	}
	log.Debugf("[bridge] %s", req.Channel)

	switch req.Channel {
	case ChannelGetDiscordRPCEnabled:
		return s.api.GetDiscordRPCEnabled(ctx)
	case ChannelSetDiscordRPCEnabled:
		var enabled bool
		if len(req.Args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", req.Channel, len(req.Args))
		}
		if err := json.Unmarshal(req.Args[0], &enabled); err != nil {
			return nil, fmt.Errorf("%s: %w", req.Channel, err)
		}
		return nil, s.api.SetDiscordRPCEnabled(ctx, enabled)
	case ChannelGetVersion:
		return s.api.GetVersion(ctx)
	case ChannelCheckForUpdates:
		return s.api.CheckForUpdates(ctx)
	case ChannelDownloadUpdate:
		return s.api.DownloadUpdate(ctx)
	case ChannelInstallUpdate:
		return s.api.InstallUpdate(ctx)
	case ChannelResetApp:
		return nil, s.api.ResetApp(ctx)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAllowed, req.Channel)
}

// Publish sends an event to every connected panel.
func (s *Server) Publish(name string, payload any) {
	ev := frame{Event: name}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Errorf("[bridge] marshal event %s: %v", name, err)
			return
		}
		ev.Payload = data
	}

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.write(ev); err != nil {
			log.Debugf("[bridge] publish %s: %v", name, err)
		}
	}
}

// ConnCount returns the number of connected panels.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
