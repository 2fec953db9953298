// Package spectate lets one host watch another host's simulation.
//
// A Source delivers snapshots of a named session by pushing them into a
// Sink. A Feed wraps that push source in a stream.Adapter so the watcher can
// pull snapshots one at a time, in arrival order.
package spectate

import (
	"context"
	"errors"
	"sync"

	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/stream"
)

var (
	// ErrUnknownTarget is returned when no active session has the given id.
	ErrUnknownTarget = errors.New("spectate: unknown target")
	// ErrFeedActive is returned by Subscribe while another feed is open.
	ErrFeedActive = errors.New("spectate: feed already active, unsubscribe first")
	// ErrUnsubscribed is returned by a Subscribe that Unsubscribe overtook.
	ErrUnsubscribed = errors.New("spectate: unsubscribed while attaching")
)

// Sink receives snapshots from a Source. stream.Adapter implements it.
type Sink interface {
	Push(s snake.State) error
	Fail(err error)
	Close()
}

// Source is a push source of snapshots for named sessions.
type Source interface {
	// Attach starts delivering snapshots of targetID into sink. The returned
	// release func detaches the sink and frees the underlying channel.
	Attach(ctx context.Context, targetID string, sink Sink) (release func(), err error)
}

// Feed is a single caller's view onto at most one remote session at a time.
type Feed struct {
	src Source

	mu      sync.Mutex
	target  string
	current *stream.Adapter[snake.State]
	cancel  context.CancelFunc
}

// NewFeed creates a feed reading from src.
func NewFeed(src Source) *Feed {
	return &Feed{src: src}
}

// Subscribe attaches to targetID and returns the snapshot sequence. A feed
// whose previous sequence has ended on its own may subscribe again without
// calling Unsubscribe.
//
// The feed lock is not held while the source attaches, so Unsubscribe and
// Target never wait on a slow dial. An Unsubscribe during the attach cancels
// its context and makes Subscribe return ErrUnsubscribed.
func (f *Feed) Subscribe(ctx context.Context, targetID string) (*stream.Adapter[snake.State], error) {
	f.mu.Lock()
	if f.current != nil && !f.current.Closed() {
		f.mu.Unlock()
		return nil, ErrFeedActive
	}
	if f.cancel != nil {
		f.cancel()
	}
	rel := &releaser{}
	a := stream.New[snake.State](rel.fire)
	attachCtx, cancel := context.WithCancel(ctx)
	f.target = targetID
	f.current = a
	f.cancel = cancel
	f.mu.Unlock()

	release, err := f.src.Attach(attachCtx, targetID, a)

	f.mu.Lock()
	overtaken := f.current != a
	if err != nil && !overtaken {
		f.current = nil
		f.target = ""
		f.cancel = nil
	}
	f.mu.Unlock()

	if overtaken {
		// a is already closed; set runs release right away.
		if err == nil {
			rel.set(release)
		}
		return nil, ErrUnsubscribed
	}
	if err != nil {
		cancel()
		a.Close()
		return nil, err
	}
	rel.set(release)
	return a, nil
}

// Unsubscribe closes the active sequence, if any, and cancels an attach
// still in flight. A consumer suspended in Next observes end of sequence.
func (f *Feed) Unsubscribe() {
	f.mu.Lock()
	a := f.current
	cancel := f.cancel
	f.current = nil
	f.target = ""
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if a != nil {
		a.Close()
	}
}

// Target returns the id of the watched session, or "" when idle.
func (f *Feed) Target() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// releaser defers a release func that is only known after the adapter that
// triggers it was created. If the adapter closes first, set runs the func
// immediately.
type releaser struct {
	mu    sync.Mutex
	fn    func()
	fired bool
}

func (r *releaser) set(fn func()) {
	r.mu.Lock()
	if !r.fired {
		r.fn = fn
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *releaser) fire() {
	r.mu.Lock()
	r.fired = true
	fn := r.fn
	r.fn = nil
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}
