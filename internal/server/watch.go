package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
)

// handleWatch streams one session's snapshots as JSON frames. The first
// frame is the latest known state; the socket is closed normally when the
// session ends.
func (s *Server) handleWatch(rw http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.hub.Get(id); !ok {
		writeError(rw, http.StatusNotFound, "unknown player")
		return
	}

	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := spectate.NewFeed(s.hub)
	seq, err := feed.Subscribe(ctx, id)
	if err != nil {
		reason := "subscribe failed"
		if errors.Is(err, spectate.ErrUnknownTarget) {
			reason = "unknown player"
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
			time.Now().Add(time.Second))
		return
	}
	defer feed.Unsubscribe()

	log := s.log.With("player", id, "remote", r.RemoteAddr)
	log.Debug("Spectator connected")

	// Reader: spectators send nothing, but reading surfaces client closes.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lagging := false
	for {
		item, ok := seq.Next(ctx)
		if !ok {
			break
		}
		switch n := seq.Len(); {
		case n >= backlogWarn && !lagging:
			lagging = true
			log.Warn("Spectator falling behind", "queued", n)
		case n == 0:
			lagging = false
		}
		data, err := protocol.Encode(protocol.FromState(item.Seq, item.Value))
		if err != nil {
			log.Error("Frame encode failed", "error", err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug("Spectator write failed", "error", err)
			return
		}
	}

	if ctx.Err() == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
			time.Now().Add(time.Second))
	}
	log.Debug("Spectator disconnected")
}
