package snake

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// Status is the engine's position in its state machine.
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusOver
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusPaused:
		return "PAUSED"
	case StatusOver:
		return "OVER"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus converts a wire name back into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "RUNNING":
		return StatusRunning, nil
	case "PAUSED":
		return StatusPaused, nil
	case "OVER":
		return StatusOver, nil
	}
	return 0, fmt.Errorf("snake: unknown status %q", s)
}

// State captures the complete simulation state. Values handed out by the
// engine are copies; callers may keep them across ticks.
type State struct {
	Body         []core.Coord // Head at index 0
	Food         core.Coord
	Facing       core.Direction
	Pending      core.Direction
	HasPending   bool
	Score        int
	TickInterval time.Duration
	Status       Status
	Mode         core.Mode
	GridSize     int
	Tick         uint64 // Committed ticks since start
}

// Head returns the first body cell.
func (s State) Head() core.Coord {
	return s.Body[0]
}

// Occupies reports whether c is part of the body.
func (s State) Occupies(c core.Coord) bool {
	return slices.Contains(s.Body, c)
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Body = slices.Clone(s.Body)
	return s
}

// DebugString returns a compact multi-line description of the state.
func (s State) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d, Score: %d, Status: %s, Mode: %s\n", s.Tick, s.Score, s.Status, s.Mode)
	fmt.Fprintf(&b, "Snake len: %d, Facing: %s, Interval: %s\n", len(s.Body), s.Facing, s.TickInterval)
	if len(s.Body) > 0 {
		fmt.Fprintf(&b, "Head: %s, Food: %s\n", s.Head(), s.Food)
	}
	return b.String()
}
