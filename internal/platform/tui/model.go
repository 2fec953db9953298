package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
	"github.com/anton-goran/snake-game-cosmic/internal/stream"
)

// ScoreSaver persists a finished game. *storage.Store implements it.
type ScoreSaver interface {
	SaveScore(username string, score int, mode string) (storage.Entry, error)
}

// PlayOptions configures a PlayModel.
type PlayOptions struct {
	// Username is the actor; an empty name disables score submission.
	Username string
	// Store receives the final score. May be nil.
	Store  ScoreSaver
	Logger *log.Logger
	// Width and Height are the initial terminal size, if known.
	Width  int
	Height int
	// Embedded makes quit hand control back to a parent model instead of
	// ending the program. ctrl+c still quits.
	Embedded bool
}

// PlayModel is the Bubble Tea model for a locally driven game. The engine
// pushes snapshots into a stream adapter; the model pulls them one at a
// time through a command.
type PlayModel struct {
	engine *snake.Engine
	states *stream.Adapter[snake.State]
	opts   PlayOptions
	log    *log.Logger

	keys KeyMap
	help help.Model

	state    snake.State
	hasState bool
	saved    bool // Whether the score of the current game over was handled
	quitting bool
	done     bool
	width    int
	height   int
}

// NewPlayModel creates a model driving engine. The engine must not be
// started yet; Init starts it.
func NewPlayModel(engine *snake.Engine, opts PlayOptions) PlayModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	states := stream.New[snake.State](nil)
	engine.Observe(func(st snake.State) {
		// ErrClosed after quit is expected
		_ = states.Push(st)
	})

	h := help.New()
	h.ShowAll = false

	return PlayModel{
		engine: engine,
		states: states,
		opts:   opts,
		log:    logger,
		keys:   DefaultKeyMap(),
		help:   h,
		width:  opts.Width,
		height: opts.Height,
	}
}

// Init starts the engine and begins pulling snapshots.
func (m PlayModel) Init() tea.Cmd {
	m.engine.Start()
	return waitForState(context.Background(), m.states)
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StateMsg:
		if msg.src != m.states {
			return m, nil
		}
		return m.handleState(msg.State)

	case StreamEndMsg:
		// Only happens after quit
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		if m.opts.Embedded && msg.String() != "ctrl+c" {
			m.done = true
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Restart):
		if m.hasState && m.state.Status == snake.StatusOver {
			m.saved = false
			m.engine.Restart()
		}
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		switch m.state.Status {
		case snake.StatusRunning:
			m.engine.Pause()
		case snake.StatusPaused:
			m.engine.Resume()
		}
		// Redraw now; the emitted snapshot follows through the stream.
		if st, ok := m.engine.Snapshot(); ok {
			m.state = st
		}
		return m, nil
	}

	if d, ok := m.keys.Direction(msg); ok {
		m.engine.RequestDirection(d)
	}
	return m, nil
}

// handleState applies one snapshot and schedules the next pull.
func (m PlayModel) handleState(st snake.State) (tea.Model, tea.Cmd) {
	m.state = st
	m.hasState = true

	if st.Status == snake.StatusOver && !m.saved {
		m.saved = true
		m.submitScore(st)
	}
	return m, waitForState(context.Background(), m.states)
}

// submitScore saves the final score. Failures are logged and ignored.
func (m PlayModel) submitScore(st snake.State) {
	if m.opts.Store == nil || m.opts.Username == "" || st.Score <= 0 {
		return
	}
	entry, err := m.opts.Store.SaveScore(m.opts.Username, st.Score, st.Mode.String())
	if err != nil {
		m.log.Warn("Could not save score", "user", m.opts.Username, "score", st.Score, "error", err)
		return
	}
	m.log.Debug("Score saved", "id", entry.ID, "user", entry.Username, "score", entry.Score)
}

// shutdown stops the engine and ends the snapshot sequence, which
// unblocks the pending wait command.
func (m PlayModel) shutdown() {
	m.engine.Close()
	m.states.Close()
}

// Done reports whether an embedded game was left with the quit key.
func (m PlayModel) Done() bool {
	return m.done
}

// Quitting reports whether the player asked to end the program.
func (m PlayModel) Quitting() bool {
	return m.quitting
}

// State returns the last snapshot the model has seen.
func (m PlayModel) State() (snake.State, bool) {
	return m.state, m.hasState
}

// View renders the current state to a string for display.
func (m PlayModel) View() string {
	if m.quitting || m.done {
		return ""
	}
	if !m.hasState {
		return "Starting..."
	}
	if tooSmall(m.state.GridSize, m.width, m.height) {
		bw, bh := BoardSize(m.state.GridSize)
		return centerText("Terminal too small", m.width) + "\n" +
			centerText(fmt.Sprintf("need %dx%d", bw, bh+5), m.width)
	}

	var b strings.Builder
	title := "SNAKE"
	if m.opts.Username != "" {
		title += " - " + m.opts.Username
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(RenderBoard(m.state))
	b.WriteString("\n")
	b.WriteString(RenderStatus(m.state))
	if banner := RenderBanner(m.state); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		if m.state.Status == snake.StatusOver {
			b.WriteString(statusStyle.Render("  (r to restart)"))
		}
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunPlay runs a local game in the alternate screen until the player quits.
func RunPlay(engine *snake.Engine, opts PlayOptions) error {
	p := tea.NewProgram(
		NewPlayModel(engine, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
