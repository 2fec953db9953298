package snake

import "github.com/anton-goran/snake-game-cosmic/internal/core"

// DirectionBuffer holds at most one pending turn. The latest accepted
// request wins; it is consumed at the start of the next tick.
type DirectionBuffer struct {
	pending core.Direction
	set     bool
}

// Request stores d unless it reverses facing. Reports whether d was kept.
func (b *DirectionBuffer) Request(d, facing core.Direction) bool {
	if d == facing.Opposite() {
		return false
	}
	b.pending = d
	b.set = true
	return true
}

// Peek returns the pending direction without consuming it.
func (b *DirectionBuffer) Peek() (core.Direction, bool) {
	return b.pending, b.set
}

// Take returns the pending direction and clears the slot.
func (b *DirectionBuffer) Take() (core.Direction, bool) {
	d, ok := b.pending, b.set
	b.Reset()
	return d, ok
}

// Reset clears the slot.
func (b *DirectionBuffer) Reset() {
	b.pending = 0
	b.set = false
}
