package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
	"github.com/anton-goran/snake-game-cosmic/internal/stream"
)

// subscribedMsg reports the outcome of a Feed.Subscribe call.
type subscribedMsg struct {
	target string
	states *stream.Adapter[snake.State]
	err    error
}

// WatchModel is the Bubble Tea model for spectating other players. It owns
// one feed and cycles it between the given players.
type WatchModel struct {
	ctx     context.Context
	feed    *spectate.Feed
	players []protocol.Player
	cursor  int

	states   *stream.Adapter[snake.State]
	state    snake.State
	hasState bool
	frames   uint64
	ended    bool
	endErr   error
	subErr   error

	keys     WatchKeyMap
	help     help.Model
	quitting bool
	width    int
	height   int
}

// NewWatchModel creates a spectator model over players, starting with the
// one at index start.
func NewWatchModel(ctx context.Context, feed *spectate.Feed, players []protocol.Player, start int) WatchModel {
	if start < 0 || start >= len(players) {
		start = 0
	}
	h := help.New()
	h.ShowAll = false
	return WatchModel{
		ctx:     ctx,
		feed:    feed,
		players: players,
		cursor:  start,
		keys:    DefaultWatchKeyMap(),
		help:    h,
	}
}

// Init subscribes to the first player.
func (m WatchModel) Init() tea.Cmd {
	return m.subscribe()
}

func (m WatchModel) subscribe() tea.Cmd {
	if len(m.players) == 0 {
		return nil
	}
	target := m.players[m.cursor].ID
	ctx, feed := m.ctx, m.feed
	return func() tea.Msg {
		states, err := feed.Subscribe(ctx, target)
		if errors.Is(err, spectate.ErrFeedActive) {
			// A subscribe for a player we already left finished late.
			feed.Unsubscribe()
			states, err = feed.Subscribe(ctx, target)
		}
		return subscribedMsg{target: target, states: states, err: err}
	}
}

// Update handles messages.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case subscribedMsg:
		if len(m.players) == 0 || msg.target != m.players[m.cursor].ID {
			// The user moved on while this subscribe was in flight.
			if msg.states != nil {
				msg.states.Close()
			}
			return m, nil
		}
		if errors.Is(msg.err, spectate.ErrUnsubscribed) {
			// A newer subscribe for the same player replaced this one.
			return m, nil
		}
		if msg.err != nil {
			m.subErr = msg.err
			return m, nil
		}
		m.subErr = nil
		m.states = msg.states
		return m, waitForState(m.ctx, m.states)

	case StateMsg:
		if msg.src != m.states {
			return m, nil
		}
		m.state = msg.State
		m.hasState = true
		m.frames = msg.Seq
		return m, waitForState(m.ctx, m.states)

	case StreamEndMsg:
		if msg.src != m.states {
			return m, nil
		}
		m.ended = true
		m.endErr = msg.Err
		return m, nil
	}
	return m, nil
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.feed.Unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m.switchTo(m.cursor + 1)

	case key.Matches(msg, m.keys.Prev):
		return m.switchTo(m.cursor - 1)
	}
	return m, nil
}

// switchTo drops the current feed and subscribes to player i (wrapping).
func (m WatchModel) switchTo(i int) (tea.Model, tea.Cmd) {
	if len(m.players) < 2 {
		return m, nil
	}
	m.feed.Unsubscribe()
	m.cursor = (i%len(m.players) + len(m.players)) % len(m.players)
	m.states = nil
	m.state = snake.State{}
	m.hasState = false
	m.frames = 0
	m.ended = false
	m.endErr = nil
	m.subErr = nil
	return m, m.subscribe()
}

// Target returns the player currently watched.
func (m WatchModel) Target() (protocol.Player, bool) {
	if len(m.players) == 0 {
		return protocol.Player{}, false
	}
	return m.players[m.cursor], true
}

// Ended reports whether the current sequence has ended and why. A nil
// error means the player's session finished normally.
func (m WatchModel) Ended() (bool, error) {
	return m.ended, m.endErr
}

// View renders the spectator screen.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	p, ok := m.Target()
	if !ok {
		return "No active players.\n"
	}

	var b strings.Builder
	title := fmt.Sprintf("WATCHING %s (%s)", p.Username, p.ID)
	if len(m.players) > 1 {
		title += fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.players))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case m.subErr != nil:
		b.WriteString(bannerStyle.Render(subscribeErrorText(m.subErr)))
		b.WriteString("\n")
	case !m.hasState && !m.ended:
		b.WriteString(statusStyle.Render("Connecting..."))
		b.WriteString("\n")
	case m.hasState:
		if tooSmall(m.state.GridSize, m.width, m.height) {
			b.WriteString("Terminal too small\n")
		} else {
			b.WriteString(RenderBoard(m.state))
			b.WriteString("\n")
		}
		b.WriteString(RenderStatus(m.state))
		b.WriteString("\n")
		if banner := RenderBanner(m.state); banner != "" {
			b.WriteString(banner)
			b.WriteString("\n")
		}
	}

	if m.ended {
		msg := "Stream ended: the player left."
		if m.endErr != nil {
			msg = "Connection lost: " + m.endErr.Error()
		}
		b.WriteString(lipgloss.NewStyle().Italic(true).Render(msg))
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func subscribeErrorText(err error) string {
	switch {
	case errors.Is(err, spectate.ErrUnknownTarget):
		return "Player is no longer active."
	case errors.Is(err, spectate.ErrFeedActive):
		return "Still detaching from the previous player, try again."
	default:
		return "Could not connect: " + err.Error()
	}
}

// RunWatch runs the spectator screen until the user quits.
func RunWatch(ctx context.Context, feed *spectate.Feed, players []protocol.Player, start int) error {
	p := tea.NewProgram(
		NewWatchModel(ctx, feed, players, start),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
