package snake

import (
	"math/rand"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// FoodSpawner places food on a cell the snake does not occupy.
type FoodSpawner struct {
	rng      *rand.Rand
	gridSize int
}

// NewFoodSpawner creates a spawner drawing from rng.
func NewFoodSpawner(rng *rand.Rand, gridSize int) *FoodSpawner {
	return &FoodSpawner{rng: rng, gridSize: gridSize}
}

// Spawn returns a uniformly sampled cell outside occupied.
// A fully occupied grid has no answer and is not handled.
func (s *FoodSpawner) Spawn(occupied []core.Coord) core.Coord {
	taken := make(map[core.Coord]struct{}, len(occupied))
	for _, c := range occupied {
		taken[c] = struct{}{}
	}
	return core.RandomFreeCell(s.rng, s.gridSize, taken)
}
