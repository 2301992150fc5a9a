package host

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"panelctl/internal/bridge"
)

// HTTPServer exposes the bridge endpoint and a health check.
type HTTPServer struct {
	mux    *http.ServeMux
	host   *Host
	bridge *bridge.Server
	token  string
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Panels  int    `json:"panels"`
}

// ErrorResponse is the body of failed HTTP requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHTTPServer wires h behind a bridge server. An empty token disables auth.
func NewHTTPServer(h *Host, token string) *HTTPServer {
	s := &HTTPServer{
		mux:    http.NewServeMux(),
		host:   h,
		bridge: bridge.NewServer(h),
		token:  token,
	}
	h.SetPublisher(s.bridge)
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.mux.HandleFunc("/health", loggingMiddleware(s.handleHealth))
	s.mux.HandleFunc("/bridge", loggingMiddleware(s.authMiddleware(s.bridge.ServeHTTP)))
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	v, _ := s.host.GetVersion(r.Context())
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: v,
		Panels:  s.bridge.ConnCount(),
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[HTTP] host listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
