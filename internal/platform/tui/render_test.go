package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
)

func sampleState() snake.State {
	return snake.State{
		Body:         []core.Coord{{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 3}},
		Food:         core.Coord{X: 5, Y: 5},
		Facing:       core.DirRight,
		Score:        3,
		TickInterval: 144 * time.Millisecond,
		Status:       snake.StatusRunning,
		Mode:         core.ModeWalls,
		GridSize:     8,
		Tick:         17,
	}
}

func TestRenderBoardCells(t *testing.T) {
	st := sampleState()
	out := RenderBoard(st)

	if n := strings.Count(out, headGlyph); n != 1 {
		t.Errorf("head glyphs = %d, want 1", n)
	}
	if n := strings.Count(out, bodyGlyph); n != len(st.Body)-1 {
		t.Errorf("body glyphs = %d, want %d", n, len(st.Body)-1)
	}
	if n := strings.Count(out, foodGlyph); n != 1 {
		t.Errorf("food glyphs = %d, want 1", n)
	}

	lines := strings.Split(out, "\n")
	_, h := BoardSize(st.GridSize)
	if len(lines) != h {
		t.Errorf("rendered %d lines, want %d", len(lines), h)
	}
}

func TestRenderStatusAndBanner(t *testing.T) {
	st := sampleState()
	status := RenderStatus(st)
	for _, want := range []string{"Score: 3", "Length: 4", "Mode: walls", "Speed: 144ms"} {
		if !strings.Contains(status, want) {
			t.Errorf("status %q missing %q", status, want)
		}
	}

	if RenderBanner(st) != "" {
		t.Error("running state should have no banner")
	}
	st.Status = snake.StatusPaused
	if !strings.Contains(RenderBanner(st), "PAUSED") {
		t.Error("paused banner missing")
	}
	st.Status = snake.StatusOver
	if !strings.Contains(RenderBanner(st), "GAME OVER - final score 3") {
		t.Errorf("over banner = %q", RenderBanner(st))
	}
}

func TestTooSmall(t *testing.T) {
	w, h := BoardSize(20)
	if w != 42 || h != 22 {
		t.Fatalf("BoardSize(20) = %dx%d", w, h)
	}
	if tooSmall(20, 0, 0) {
		t.Error("unknown size should not count as too small")
	}
	if !tooSmall(20, 30, 40) {
		t.Error("narrow terminal should be too small")
	}
	if tooSmall(20, 80, 40) {
		t.Error("80x40 should fit a 20x20 board")
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("abc", 9); got != "   abc" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("centerText overflow = %q", got)
	}
}
