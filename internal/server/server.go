// Package server exposes active sessions, live spectating and the
// leaderboard over HTTP.
//
// Routes:
//
//	GET /players/active        active sessions
//	GET /players/{id}/watch    websocket stream of state frames
//	GET /leaderboard           top scores (?mode=, ?limit=)
//	GET /leaderboard/stats     per-mode statistics
//	GET /healthz               liveness
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	backlogWarn     = 64 // Queued frames before a slow spectator is logged
)

// Server serves the HTTP API for one hub.
type Server struct {
	hub   *spectate.Hub
	store *storage.Store // nil disables the leaderboard routes
	log   *log.Logger

	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New creates a server. store may be nil.
func New(hub *spectate.Hub, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		hub:   hub,
		store: store,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /players/active", s.handleActive)
	s.mux.HandleFunc("GET /players/{id}/watch", s.handleWatch)
	s.mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /leaderboard/stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "players": s.hub.Count()})
	})
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("Stopping HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleActive(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, http.StatusOK, s.hub.Active())
}

func (s *Server) handleLeaderboard(rw http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(rw, http.StatusServiceUnavailable, "leaderboard disabled")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != "" {
		if _, err := core.ParseMode(mode); err != nil {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
	}
	limit := storage.LeaderboardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > storage.LeaderboardSize {
			writeError(rw, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	entries, err := s.store.TopScores(mode, limit)
	if err != nil {
		s.log.Error("Leaderboard query failed", "error", err)
		writeError(rw, http.StatusInternalServerError, "leaderboard unavailable")
		return
	}
	if entries == nil {
		entries = []storage.Entry{}
	}
	writeJSON(rw, http.StatusOK, entries)
}

func (s *Server) handleStats(rw http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		writeError(rw, http.StatusServiceUnavailable, "leaderboard disabled")
		return
	}
	stats, err := s.store.AllStats()
	if err != nil {
		s.log.Error("Stats query failed", "error", err)
		writeError(rw, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(rw, http.StatusOK, stats)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, protocol.ErrorResponse{Error: msg})
}
