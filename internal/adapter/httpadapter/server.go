// Package httpadapter serves health, readiness, metrics, and the live event
// view over HTTP.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/event-finder/internal/query"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EventView is the live event state served by the server.
type EventView interface {
	Snapshot() query.Snapshot
	Subscribe() (<-chan query.Snapshot, func())
	CheckReadiness(ctx context.Context) error
}

// Reacquirer triggers a new location acquisition.
type Reacquirer interface {
	Reacquire()
}

// Server exposes the operational endpoints and the event view.
type Server struct {
	httpServer *http.Server
	view       EventView
	location   Reacquirer
	logger     *slog.Logger

	// done is closed on Shutdown so websocket streams end.
	done chan struct{}
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /event, /event/stream, and /location routes.
func NewServer(addr string, view EventView, location Reacquirer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		view:     view,
		location: location,
		logger:   logger,
		done:     make(chan struct{}),
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(view))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /event", s.handleEvent)
	mux.HandleFunc("GET /event/stream", s.handleStream)
	mux.HandleFunc("POST /location", s.handleReacquire)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown closes open streams and drains connections within the given
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleEvent(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, newSnapshotView(s.view.Snapshot()))
}

func (s *Server) handleReacquire(w http.ResponseWriter, _ *http.Request) {
	if s.location == nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "location disabled"})
		return
	}
	s.location.Reacquire()
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "reacquiring"})
}
