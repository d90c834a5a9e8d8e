// Package health serves the liveness probe. It runs on its own goroutine and
// never touches session state, so probing cannot block on message handling.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// maxBindAttempts bounds retries when the port is taken
	maxBindAttempts = 5
	bindRetryDelay  = 2 * time.Second
)

// Server is the health probe HTTP server
type Server struct {
	host    string
	port    int
	handler http.Handler // optional metrics handler mounted at /metrics
	server  *http.Server
	logger  zerolog.Logger
	bound   chan struct{}
	addr    string
}

// NewServer creates a new health server. metricsHandler may be nil.
func NewServer(host string, port int, metricsHandler http.Handler, logger zerolog.Logger) *Server {
	return &Server{
		host:    host,
		port:    port,
		handler: metricsHandler,
		logger:  logger.With().Str("component", "health").Logger(),
		bound:   make(chan struct{}),
	}
}

// Start binds and serves the probe in the background. Port conflicts are
// retried a bounded number of times; giving up on the probe is logged but
// never stops message dispatch.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	if s.handler != nil {
		mux.Handle("/metrics", s.handler)
	}
	mux.HandleFunc("/", s.handleNotFound)

	s.server = &http.Server{Handler: mux}

	go s.serve()
}

func (s *Server) serve() {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var listener net.Listener
	var err error

	for attempt := 1; attempt <= maxBindAttempts; attempt++ {
		listener, err = net.Listen("tcp", addr)
		if err == nil {
			break
		}

		s.logger.Warn().
			Err(err).
			Str("addr", addr).
			Int("attempt", attempt).
			Int("max_attempts", maxBindAttempts).
			Msg("Failed to bind health endpoint, retrying")

		time.Sleep(bindRetryDelay)
	}

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("addr", addr).
			Msg("Giving up on health endpoint; dispatch continues without it")
		return
	}

	s.addr = listener.Addr().String()
	close(s.bound)
	s.logger.Info().Str("addr", s.addr).Msg("Health endpoint listening")

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error().Err(err).Msg("Health endpoint stopped unexpectedly")
	}
}

// Stop closes the health endpoint
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown health server: %w", err)
	}

	s.logger.Info().Msg("Health endpoint stopped")
	return nil
}

// Bound reports when the listener is up. Used by tests and startup logging.
func (s *Server) Bound() <-chan struct{} {
	return s.bound
}

// Addr returns the bound listener address. Valid once Bound is closed.
func (s *Server) Addr() string {
	return s.addr
}

// handleHealth answers liveness queries with a fixed plaintext body
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleNotFound answers any other path
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
