package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
)

// Each grid cell is two terminal columns wide so the board looks square.
const (
	headGlyph  = "@@"
	bodyGlyph  = "██"
	foodGlyph  = "()"
	emptyGlyph = "  "
)

var (
	headStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	bodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	foodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).MarginBottom(1)

	// Walls mode gets a solid frame, pass-through a soft one.
	wallsFrame = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("208"))
	openFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// BoardSize returns the rendered width and height of a grid, frame included.
func BoardSize(gridSize int) (w, h int) {
	return gridSize*len([]rune(emptyGlyph)) + 2, gridSize + 2
}

// RenderBoard draws the grid with the snake and the food.
func RenderBoard(st snake.State) string {
	cells := make(map[core.Coord]int, len(st.Body))
	for i, c := range st.Body {
		if _, ok := cells[c]; !ok {
			cells[c] = i
		}
	}

	body := bodyStyle
	if st.Status == snake.StatusOver {
		body = deadStyle
	}

	var sb strings.Builder
	for y := range st.GridSize {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for x := range st.GridSize {
			c := core.Coord{X: x, Y: y}
			idx, onSnake := cells[c]
			switch {
			case onSnake && idx == 0:
				sb.WriteString(headStyle.Render(headGlyph))
			case onSnake:
				sb.WriteString(body.Render(bodyGlyph))
			case c == st.Food:
				sb.WriteString(foodStyle.Render(foodGlyph))
			default:
				sb.WriteString(emptyGlyph)
			}
		}
	}

	frame := openFrame
	if st.Mode == core.ModeWalls {
		frame = wallsFrame
	}
	return frame.Render(sb.String())
}

// RenderStatus returns the one-line summary shown under the board.
func RenderStatus(st snake.State) string {
	line := fmt.Sprintf("Score: %d   Length: %d   Mode: %s   Speed: %dms",
		st.Score, len(st.Body), st.Mode, st.TickInterval.Milliseconds())
	return statusStyle.Render(line)
}

// RenderBanner returns the overlay text for non-running states.
func RenderBanner(st snake.State) string {
	switch st.Status {
	case snake.StatusPaused:
		return bannerStyle.Render("PAUSED - press p to resume")
	case snake.StatusOver:
		return bannerStyle.Render(fmt.Sprintf("GAME OVER - final score %d", st.Score))
	}
	return ""
}

// centerText centers text horizontally within the given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// tooSmall reports whether a terminal of w x h cannot fit the board plus
// the title, status and help lines.
func tooSmall(gridSize, w, h int) bool {
	if w == 0 && h == 0 {
		return false
	}
	bw, bh := BoardSize(gridSize)
	return w < bw || h < bh+5
}
