package spectate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
)

// WSSource reads snapshots of sessions hosted by a remote server over the
// /players/{id}/watch websocket endpoint.
type WSSource struct {
	baseURL string
	dialer  websocket.Dialer
	log     *log.Logger
}

// NewWSSource creates a source for the server at baseURL, which may use the
// http, https, ws or wss scheme.
func NewWSSource(baseURL string, logger *log.Logger) (*WSSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("spectate: parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("spectate: unsupported scheme %q", u.Scheme)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WSSource{
		baseURL: u.String(),
		dialer: websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		log: logger,
	}, nil
}

// WatchURL returns the websocket address for targetID.
func (w *WSSource) WatchURL(targetID string) string {
	return w.baseURL + "/players/" + url.PathEscape(targetID) + "/watch"
}

// Attach implements Source. Frames that fail schema validation end the
// sequence with an error.
func (w *WSSource) Attach(ctx context.Context, targetID string, sink Sink) (func(), error) {
	conn, resp, err := w.dialer.DialContext(ctx, w.WatchURL(targetID), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, targetID)
		}
		return nil, fmt.Errorf("spectate: dial %s: %w", targetID, err)
	}

	var closeOnce sync.Once
	release := func() {
		closeOnce.Do(func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(time.Second))
			_ = conn.Close()
		})
	}

	go w.readLoop(conn, targetID, sink, release)
	return release, nil
}

func (w *WSSource) readLoop(conn *websocket.Conn, targetID string, sink Sink, release func()) {
	defer release()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sink.Close()
				return
			}
			w.log.Debug("spectate connection lost", "target", targetID, "error", err)
			sink.Fail(err)
			return
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			w.log.Warn("dropping spectator feed", "target", targetID, "error", err)
			sink.Fail(err)
			return
		}
		st, err := frame.State()
		if err != nil {
			sink.Fail(err)
			return
		}
		if err := sink.Push(st); err != nil {
			w.log.Debug("spectator detached", "target", targetID)
			return
		}
	}
}
