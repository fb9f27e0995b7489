// Package server exposes stored coaching points over HTTP: list points,
// read and append event logs, and watch a recording live over websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/filmroom/telestrator/internal/live"
	"github.com/filmroom/telestrator/internal/store"
)

const shutdownTimeout = 10 * time.Second

// maxBodyBytes bounds an append request. A full session log is a few
// hundred KB at most; 8 MB leaves room without inviting abuse.
const maxBodyBytes = 8 << 20

// Server is the HTTP and websocket surface over an event store.
type Server struct {
	store    store.EventStore
	hub      *live.Hub
	upgrader websocket.Upgrader
	http     *http.Server
}

// New builds a server listening on addr, reading and writing events
// through st and fanning live appends out through hub.
func New(addr string, st store.EventStore, hub *live.Hub) *Server {
	s := &Server{
		store: st,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers connect from the desktop app, not a browser page,
			// so there is no origin to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/points", s.handleListPoints)
	mux.HandleFunc("DELETE /api/points/{id}", s.handleDeletePoint)
	mux.HandleFunc("GET /api/points/{id}/events", s.handleListEvents)
	mux.HandleFunc("POST /api/points/{id}/events", s.handleAppendEvents)
	mux.HandleFunc("GET /api/points/{id}/live", s.handleLive)
	return mux
}

// Run serves until ctx is canceled, then drains in-flight requests and
// drops live watchers. Always returns the listener's error, nil on a
// clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.http.Addr)
		err := s.http.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// Websocket connections are hijacked, so Shutdown will not wait for
	// them; the hub closes them itself.
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return <-errc
}
