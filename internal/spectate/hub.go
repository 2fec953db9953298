package spectate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
	"github.com/anton-goran/snake-game-cosmic/internal/stream"
)

// Recorder receives every snapshot published through a hub.
type Recorder interface {
	Record(sessionID string, s snake.State) error
}

// Hub tracks active play sessions and fans their snapshots out to
// spectators. It implements Source for sessions hosted in this process.
// Thread-safe for concurrent access.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	recorder Recorder
	onError  func(sessionID string, err error)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// SetRecorder installs r to receive every published snapshot. onError, if
// non-nil, is told about recording failures; they never stop publishing.
func (h *Hub) SetRecorder(r Recorder, onError func(sessionID string, err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recorder = r
	h.onError = onError
}

// Register adds a session for username playing mode and returns it.
func (h *Hub) Register(username string, mode core.Mode) *Session {
	s := &Session{
		hub:      h,
		id:       newSessionID(),
		username: username,
		mode:     mode,
		subs:     make(map[uint64]Sink),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.id] = s
	return s
}

// Get returns a session by id.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Count returns the number of active sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Active lists the active sessions sorted by id.
func (h *Hub) Active() []protocol.Player {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	players := make([]protocol.Player, 0, len(sessions))
	for _, s := range sessions {
		players = append(players, s.Info())
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID < players[j].ID
	})
	return players
}

// Attach implements Source. A new spectator first receives the latest
// snapshot of the session, if one was published.
func (h *Hub) Attach(ctx context.Context, targetID string, sink Sink) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := h.Get(targetID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, targetID)
	}
	return s.attach(sink)
}

// Close ends every session.
func (h *Hub) Close() {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

func (h *Hub) record(id string, st snake.State) {
	h.mu.RLock()
	r, onError := h.recorder, h.onError
	h.mu.RUnlock()
	if r == nil {
		return
	}
	if err := r.Record(id, st); err != nil && onError != nil {
		onError(id, err)
	}
}

// Session is one player's simulation as seen by the hub.
type Session struct {
	hub      *Hub
	id       string
	username string
	mode     core.Mode

	mu      sync.Mutex
	last    snake.State
	hasLast bool
	subs    map[uint64]Sink
	nextSub uint64
	closed  bool

	done     chan struct{}
	doneOnce sync.Once
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Username returns the player name.
func (s *Session) Username() string {
	return s.username
}

// Done returns a channel that closes when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Info describes the session for the active players listing.
func (s *Session) Info() protocol.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := protocol.Player{
		ID:       s.id,
		Username: s.username,
		Mode:     s.mode.String(),
	}
	if s.hasLast {
		p.CurrentScore = s.last.Score
		p.Status = s.last.Status.String()
		p.Mode = s.last.Mode.String()
	}
	return p
}

// Spectators returns the number of attached sinks.
func (s *Session) Spectators() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Publish hands st to every spectator. It has the engine observer signature.
func (s *Session) Publish(st snake.State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.last = st.Clone()
	s.hasLast = true
	for id, sink := range s.subs {
		if err := sink.Push(st.Clone()); errors.Is(err, stream.ErrClosed) {
			delete(s.subs, id)
		}
	}
	s.mu.Unlock()

	s.hub.record(s.id, st)
}

// Close unregisters the session and ends every spectator's sequence.
// Safe to call multiple times.
func (s *Session) Close() {
	s.doneOnce.Do(func() {
		s.hub.unregister(s.id)

		s.mu.Lock()
		s.closed = true
		subs := s.subs
		s.subs = make(map[uint64]Sink)
		s.mu.Unlock()

		for _, sink := range subs {
			sink.Close()
		}
		close(s.done)
	})
}

func (s *Session) attach(sink Sink) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, s.id)
	}

	s.nextSub++
	id := s.nextSub
	s.subs[id] = sink
	if s.hasLast {
		_ = sink.Push(s.last.Clone())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// newSessionID returns an id of the form player_<8 hex>.
func newSessionID() string {
	return "player_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
