package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/anton-goran/snake-game-cosmic/internal/config"
	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
)

const sshShutdownTimeout = 10 * time.Second

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file. It is generated on
	// first start if missing.
	HostKeyPath string

	// IdleTimeout closes idle connections. Zero disables it.
	IdleTimeout time.Duration

	// Rules are the game settings every session starts from.
	Rules config.Config
}

// SSHServer serves remote play over SSH. The SSH username is the player's
// name on the leaderboard and in the active player list.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	hub    *spectate.Hub
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a server publishing sessions to hub. store may be nil.
func NewSSHServer(cfg SSHServerConfig, hub *spectate.Hub, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.Default()
	}
	srv := &SSHServer{
		config: cfg,
		hub:    hub,
		store:  store,
		logger: logger,
	}

	hostKeyPath, err := expandHome(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}
	if cfg.IdleTimeout > 0 {
		opts = append(opts, wish.WithIdleTimeout(cfg.IdleTimeout))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("No PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(SessionDeps{
		Rules:  s.config.Rules,
		Hub:    s.hub,
		Store:  s.store,
		Logger: s.logger,
	}, sshSession.User(), pty.Window.Width, pty.Window.Height)

	// The session may be dropped without the model seeing a quit key.
	go func() {
		<-sshSession.Context().Done()
		model.release()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("Session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("Session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("SSH server listening", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Stopping SSH server")
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sshShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// SessionDeps are the shared services a SessionModel plays against.
type SessionDeps struct {
	Rules  config.Config
	Hub    *spectate.Hub // nil disables spectating
	Store  *storage.Store
	Logger *log.Logger
}

// liveGame is the engine and hub registration of the game in progress.
// It is shared by pointer so the SSH handler can release it when the
// connection drops.
type liveGame struct {
	engine  *snake.Engine
	session *spectate.Session
}

type gameSlot struct {
	mu   sync.Mutex
	game *liveGame
}

func (s *gameSlot) set(g *liveGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = g
}

func (s *gameSlot) take() *liveGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.game
	s.game = nil
	return g
}

// SessionModel manages one player's flow: menu -> game -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	deps     SessionDeps
	username string
	slot     *gameSlot

	menu       MenuModel
	play       *PlayModel
	scoreboard *ScoreboardModel

	preset   config.DifficultyPreset
	width    int
	height   int
	quitting bool
}

// NewSessionModel creates a new session model for username.
func NewSessionModel(deps SessionDeps, username string, width, height int) SessionModel {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	mode, err := core.ParseMode(deps.Rules.Game.Mode)
	if err != nil {
		mode = core.ModePassThrough
	}
	return SessionModel{
		deps:     deps,
		username: username,
		slot:     &gameSlot{},
		menu:     NewMenuModel(mode, deps.Rules.Difficulty, width, height),
		preset:   deps.Rules.Difficulty,
		width:    width,
		height:   height,
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch {
	case m.play != nil:
		return m.updatePlay(msg)
	case m.scoreboard != nil:
		return m.updateScoreboard(msg)
	}
	return m.updateMenu(msg)
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	res := m.menu.Result()
	switch {
	case res == nil:
		return m, cmd
	case res.Quit:
		m.quitting = true
		return m, tea.Quit
	case res.WantsScoreboard:
		var lister ScoreLister
		if m.deps.Store != nil {
			lister = m.deps.Store
		}
		sb := NewScoreboardModel(lister, "", m.width, m.height)
		m.scoreboard = &sb
		m.menu = NewMenuModel(m.menu.selectedMode(), m.preset, m.width, m.height)
		return m, nil
	}

	m.preset = res.Difficulty
	play, err := m.startGame(res.Mode, res.Difficulty)
	m.menu = NewMenuModel(res.Mode, res.Difficulty, m.width, m.height)
	if err != nil {
		m.deps.Logger.Error("Could not start game", "user", m.username, "error", err)
		return m, nil
	}
	m.play = play
	return m, m.play.Init()
}

// startGame builds an engine for the selection and registers it with the hub.
func (m SessionModel) startGame(mode core.Mode, preset config.DifficultyPreset) (*PlayModel, error) {
	rules, err := m.deps.Rules.EngineFor(mode, preset)
	if err != nil {
		return nil, err
	}
	engine := snake.NewEngine(rules)

	game := &liveGame{engine: engine}
	if m.deps.Hub != nil {
		game.session = m.deps.Hub.Register(m.username, mode)
		engine.Observe(game.session.Publish)
		m.deps.Logger.Info("Game started", "user", m.username, "player", game.session.ID(), "mode", mode)
	}
	m.slot.set(game)

	var saver ScoreSaver
	if m.deps.Store != nil {
		saver = m.deps.Store
	}
	play := NewPlayModel(engine, PlayOptions{
		Username: m.username,
		Store:    saver,
		Logger:   m.deps.Logger,
		Width:    m.width,
		Height:   m.height,
		Embedded: true,
	})
	return &play, nil
}

func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newPlay, cmd := m.play.Update(msg)
	if playModel, ok := newPlay.(PlayModel); ok {
		m.play = &playModel
	}

	switch {
	case m.play.Quitting():
		m.release()
		m.quitting = true
		return m, tea.Quit
	case m.play.Done():
		m.release()
		m.play = nil
		return m, nil
	}
	return m, cmd
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.scoreboard.keys.Quit) {
		if km.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		m.scoreboard = nil
		return m, nil
	}
	newSB, cmd := m.scoreboard.Update(msg)
	if sb, ok := newSB.(ScoreboardModel); ok {
		m.scoreboard = &sb
	}
	return m, cmd
}

// release ends the running game, if any, and removes it from the hub.
func (m SessionModel) release() {
	game := m.slot.take()
	if game == nil {
		return
	}
	game.engine.Close()
	if game.session != nil {
		game.session.Close()
		m.deps.Logger.Info("Game ended", "user", m.username, "player", game.session.ID())
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	switch {
	case m.quitting:
		return ""
	case m.play != nil:
		return m.play.View()
	case m.scoreboard != nil:
		return m.scoreboard.View()
	}
	return m.menu.View()
}

func expandHome(path string) (string, error) {
	if path == "" {
		path = filepath.Join("~", ".snake", "host_key")
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}
