// Package core provides the grid primitives shared by the simulation and its hosts.
// It holds no state and has no external dependencies so that game logic stays
// pure and testable.
package core

import (
	"fmt"
	"math/rand"
)

// Coord is a cell on the square grid. Valid cells satisfy 0 <= X,Y < gridSize.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is the heading of the snake.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

// Directions lists every direction in declaration order.
var Directions = [...]Direction{DirRight, DirDown, DirLeft, DirUp}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}

// Delta returns the unit step along the direction. Y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		panic(fmt.Sprintf("core: invalid direction %d", int(d)))
	}
}

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection converts a wire name back into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "UP":
		return DirUp, nil
	case "DOWN":
		return DirDown, nil
	case "LEFT":
		return DirLeft, nil
	case "RIGHT":
		return DirRight, nil
	}
	return 0, fmt.Errorf("core: unknown direction %q", s)
}

// Mode is the rule variant applied when the head leaves the grid.
type Mode int

const (
	// ModePassThrough wraps the head to the opposite edge.
	ModePassThrough Mode = iota
	// ModeWalls ends the simulation when the head leaves the grid.
	ModeWalls
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModePassThrough:
		return "pass-through"
	case ModeWalls:
		return "walls"
	default:
		return "unknown"
	}
}

// ParseMode converts a wire name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "pass-through":
		return ModePassThrough, nil
	case "walls":
		return ModeWalls, nil
	}
	return 0, fmt.Errorf("core: unknown mode %q", s)
}

// Step advances c by one cell along d without any normalization.
func Step(c Coord, d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Wrap normalizes c into [0, size) on both axes independently.
func Wrap(c Coord, size int) Coord {
	return Coord{X: wrapAxis(c.X, size), Y: wrapAxis(c.Y, size)}
}

func wrapAxis(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// InBounds reports whether c lies inside a grid of the given size.
func InBounds(c Coord, size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// RandomFreeCell samples cells uniformly until one is not in occupied.
// It loops forever when occupied covers the whole grid; callers keep the
// grid large enough relative to the snake for that to be unreachable.
func RandomFreeCell(rng *rand.Rand, size int, occupied map[Coord]struct{}) Coord {
	for {
		c := Coord{X: rng.Intn(size), Y: rng.Intn(size)}
		if _, taken := occupied[c]; !taken {
			return c
		}
	}
}
