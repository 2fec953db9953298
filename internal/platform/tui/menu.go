package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anton-goran/snake-game-cosmic/internal/config"
	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// MenuKeyMap defines the key bindings for the setup menu.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Select key.Binding
	Scores key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Select, k.Scores, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Switch}, {k.Select, k.Scores, k.Quit}}
}

// DefaultMenuKeyMap returns default menu bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "mode/difficulty"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "play"),
		),
		Scores: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "scores"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MenuResult holds the result of the setup menu.
type MenuResult struct {
	Mode            core.Mode
	Difficulty      config.DifficultyPreset
	WantsScoreboard bool
	Quit            bool
}

var menuModes = []core.Mode{core.ModePassThrough, core.ModeWalls}

// MenuModel lets the player choose a wall mode and a difficulty preset.
type MenuModel struct {
	modeCursor int
	diffCursor int
	onDiff     bool // Focus is on the difficulty column

	keys   MenuKeyMap
	help   help.Model
	result *MenuResult
	width  int
	height int
}

// NewMenuModel creates a menu preselecting mode and preset.
func NewMenuModel(mode core.Mode, preset config.DifficultyPreset, width, height int) MenuModel {
	m := MenuModel{
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	for i, md := range menuModes {
		if md == mode {
			m.modeCursor = i
		}
	}
	m.diffCursor = 1 // normal
	for i, p := range config.Presets {
		if p == preset {
			m.diffCursor = i
		}
	}
	return m
}

// Init initializes the model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.result = &MenuResult{Quit: true}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.onDiff {
			m.diffCursor = max(m.diffCursor-1, 0)
		} else {
			m.modeCursor = max(m.modeCursor-1, 0)
		}

	case key.Matches(msg, m.keys.Down):
		if m.onDiff {
			m.diffCursor = min(m.diffCursor+1, len(config.Presets)-1)
		} else {
			m.modeCursor = min(m.modeCursor+1, len(menuModes)-1)
		}

	case key.Matches(msg, m.keys.Switch):
		m.onDiff = !m.onDiff

	case key.Matches(msg, m.keys.Scores):
		m.result = &MenuResult{WantsScoreboard: true}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Select):
		m.result = &MenuResult{
			Mode:       menuModes[m.modeCursor],
			Difficulty: config.Presets[m.diffCursor],
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m MenuModel) selectedMode() core.Mode {
	return menuModes[m.modeCursor]
}

// Result returns the menu outcome, or nil while the menu is open.
func (m MenuModel) Result() *MenuResult {
	return m.result
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.result != nil {
		return ""
	}

	column := func(title string, items []string, cursor int, focused bool) string {
		var b strings.Builder
		head := lipgloss.NewStyle().Bold(true)
		if focused {
			head = head.Foreground(lipgloss.Color("229"))
		}
		b.WriteString(head.Render(title))
		b.WriteString("\n\n")
		for i, it := range items {
			prefix := "  "
			style := lipgloss.NewStyle()
			if i == cursor {
				prefix = "> "
				if focused {
					style = style.Bold(true).Foreground(lipgloss.Color("229"))
				}
			}
			b.WriteString(style.Render(prefix + it))
			b.WriteString("\n")
		}
		return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
	}

	modes := make([]string, len(menuModes))
	for i, md := range menuModes {
		modes[i] = md.String()
	}
	diffs := make([]string, len(config.Presets))
	for i, p := range config.Presets {
		if ms := config.BaseIntervalForPreset(p); ms > 0 {
			diffs[i] = fmt.Sprintf("%-6s %dms", p, ms)
		} else {
			diffs[i] = fmt.Sprintf("%-6s no speed-up", p)
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("  S N A K E  ", m.width)))
	b.WriteString("\n")
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		column("Mode", modes, m.modeCursor, !m.onDiff),
		column("Difficulty", diffs, m.diffCursor, m.onDiff),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunMenu shows the setup menu and returns the player's choice.
func RunMenu(mode core.Mode, preset config.DifficultyPreset, width, height int) (MenuResult, error) {
	p := tea.NewProgram(
		NewMenuModel(mode, preset, width, height),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return MenuResult{}, err
	}
	m, ok := final.(MenuModel)
	if !ok || m.Result() == nil {
		return MenuResult{Quit: true}, nil
	}
	return *m.Result(), nil
}
