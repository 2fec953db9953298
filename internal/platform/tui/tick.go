// Package tui provides the Bubble Tea hosts for the snake engine.
// It handles the terminal UI loop, input mapping, and the SSH front end.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/stream"
)

// StateMsg carries one snapshot pulled from a state sequence.
type StateMsg struct {
	src   *stream.Adapter[snake.State]
	Seq   uint64
	State snake.State
}

// StreamEndMsg reports that a state sequence ended. Err is nil on a clean
// close and holds the failure cause otherwise.
type StreamEndMsg struct {
	src *stream.Adapter[snake.State]
	Err error
}

// waitForState returns a command that blocks until the next snapshot of a
// is available. The models re-issue it after every StateMsg.
func waitForState(ctx context.Context, a *stream.Adapter[snake.State]) tea.Cmd {
	return func() tea.Msg {
		item, ok := a.Next(ctx)
		if !ok {
			return StreamEndMsg{src: a, Err: a.Err()}
		}
		return StateMsg{src: a, Seq: item.Seq, State: item.Value}
	}
}
