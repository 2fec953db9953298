// Package snake implements the tick-based snake simulation: collision rules,
// food placement, the direction buffer and the engine state machine that
// composes them.
package snake

import (
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// Config holds the rule parameters of one simulation.
type Config struct {
	GridSize     int
	Mode         core.Mode
	BaseInterval time.Duration // Tick interval after start
	MinInterval  time.Duration // Floor for the interval
	IntervalStep time.Duration // Reduction per food eaten
	Seed         int64         // 0 means time based
}

// DefaultConfig returns the classic 20x20 pass-through rules.
func DefaultConfig() Config {
	return Config{
		GridSize:     20,
		Mode:         core.ModePassThrough,
		BaseInterval: 150 * time.Millisecond,
		MinInterval:  50 * time.Millisecond,
		IntervalStep: 2 * time.Millisecond,
	}
}

// SeedLayout returns the body and food every simulation starts from.
// For the default 20x20 grid this is body (10,10),(9,10),(8,10) and food (15,15).
func SeedLayout(gridSize int) ([]core.Coord, core.Coord) {
	c := gridSize / 2
	body := []core.Coord{
		{X: c, Y: c}, // Head
		{X: c - 1, Y: c},
		{X: c - 2, Y: c},
	}
	off := gridSize / 4
	return body, core.Coord{X: c + off, Y: c + off}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRand sets the random source used for food placement.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSeedLayout overrides the body and food every Start begins from.
func WithSeedLayout(body []core.Coord, food core.Coord) Option {
	return func(e *Engine) {
		e.seedBody = slices.Clone(body)
		e.seedFood = food
	}
}

// Engine owns one SimulationState and the timer that advances it.
//
// All intents (Start, Pause, Resume, RequestDirection) are serialized with
// ticks; the state itself is never exposed, only copies. Observers run on
// the ticking goroutine after the state lock is released and must not call
// Start, Tick or Close.
type Engine struct {
	cfg     Config
	sched   Scheduler
	rng     *rand.Rand
	spawner *FoodSpawner

	seedBody []core.Coord
	seedFood core.Coord

	tickMu sync.Mutex // Serializes ticks and their emission

	mu        sync.Mutex
	state     State
	dir       DirectionBuffer
	started   bool
	closed    bool
	timer     Timer
	gen       uint64 // Invalidates timers that fire after being replaced
	observers []func(State)
}

// NewEngine creates an engine. It holds no state until Start is called.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		sched: RealScheduler{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	e.spawner = NewFoodSpawner(e.rng, cfg.GridSize)
	if len(e.seedBody) == 0 {
		e.seedBody, e.seedFood = SeedLayout(cfg.GridSize)
	}
	return e
}

// Config returns the rules the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Observe registers fn to receive a snapshot after every start, tick, pause
// and resume.
func (e *Engine) Observe(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Start discards any previous state, seeds a fresh one and begins ticking.
// Legal from every status.
func (e *Engine) Start() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.state = State{
		Body:         slices.Clone(e.seedBody),
		Food:         e.seedFood,
		Facing:       core.DirRight,
		TickInterval: e.cfg.BaseInterval,
		Status:       StatusRunning,
		Mode:         e.cfg.Mode,
		GridSize:     e.cfg.GridSize,
	}
	e.dir.Reset()
	e.started = true
	e.cancelLocked()
	e.scheduleLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
}

// Restart is an alias for Start.
func (e *Engine) Restart() {
	e.Start()
}

// Pause stops ticking. Only legal while running.
func (e *Engine) Pause() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	if !e.started || e.state.Status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.state.Status = StatusPaused
	e.cancelLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
}

// Resume continues ticking. Only legal while paused.
func (e *Engine) Resume() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	if !e.started || e.closed || e.state.Status != StatusPaused {
		e.mu.Unlock()
		return
	}
	e.state.Status = StatusRunning
	e.scheduleLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(snap)
}

// RequestDirection buffers a turn for the next tick. A reversal of the
// current facing is dropped; otherwise the latest request wins.
func (e *Engine) RequestDirection(d core.Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.state.Status == StatusOver {
		return
	}
	e.dir.Request(d, e.state.Facing)
}

// Tick advances the simulation by one step. It is a no-op unless running.
func (e *Engine) Tick() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	snap, ok := e.stepLocked()
	e.mu.Unlock()

	if ok {
		e.emit(snap)
	}
}

// Snapshot returns a copy of the current state. ok is false before Start.
func (e *Engine) Snapshot() (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return State{}, false
	}
	return e.snapshotLocked(), true
}

// Close cancels the pending tick. The engine ignores Start afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancelLocked()
}

// fire is the timer callback for generation gen.
func (e *Engine) fire(gen uint64) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	if gen != e.gen || e.closed {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	snap, ok := e.stepLocked()
	if e.state.Status == StatusRunning {
		// A changed interval applies from this scheduling on.
		e.scheduleLocked()
	}
	e.mu.Unlock()

	if ok {
		e.emit(snap)
	}
}

// stepLocked performs one tick. Reports whether a snapshot should be emitted.
func (e *Engine) stepLocked() (State, bool) {
	if !e.started || e.state.Status != StatusRunning {
		return State{}, false
	}
	s := &e.state

	if d, ok := e.dir.Take(); ok && d != s.Facing.Opposite() {
		s.Facing = d
	}

	candidate := core.Step(s.Head(), s.Facing)
	switch e.cfg.Mode {
	case core.ModePassThrough:
		candidate = core.Wrap(candidate, e.cfg.GridSize)
	case core.ModeWalls:
	}

	growing := candidate == s.Food
	if Classify(candidate, s.Body, growing, e.cfg.Mode, e.cfg.GridSize) != OutcomeOK {
		s.Status = StatusOver
		e.cancelLocked()
		return e.snapshotLocked(), true
	}

	body := make([]core.Coord, 0, len(s.Body)+1)
	body = append(body, candidate)
	body = append(body, s.Body...)

	if growing {
		s.Score++
		s.TickInterval = max(e.cfg.MinInterval, s.TickInterval-e.cfg.IntervalStep)
		s.Body = body
		s.Food = e.spawner.Spawn(s.Body)
	} else {
		s.Body = body[:len(body)-1]
	}
	s.Tick++

	return e.snapshotLocked(), true
}

func (e *Engine) snapshotLocked() State {
	snap := e.state.Clone()
	snap.Pending, snap.HasPending = e.dir.Peek()
	return snap
}

func (e *Engine) scheduleLocked() {
	e.gen++
	gen := e.gen
	e.timer = e.sched.AfterFunc(e.state.TickInterval, func() { e.fire(gen) })
}

func (e *Engine) cancelLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) emit(snap State) {
	e.mu.Lock()
	observers := slices.Clone(e.observers)
	e.mu.Unlock()

	for _, fn := range observers {
		fn(snap.Clone())
	}
}
