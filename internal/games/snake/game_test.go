package snake

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

// newTestEngine creates a manually scheduled engine with a fixed seed.
func newTestEngine(mode core.Mode) (*Engine, *ManualScheduler) {
	cfg := DefaultConfig()
	cfg.Mode = mode
	sched := NewManualScheduler()
	e := NewEngine(cfg, WithScheduler(sched), WithRand(rand.New(rand.NewSource(42))))
	return e, sched
}

// placeSnake starts the engine and overrides the seeded layout.
func placeSnake(e *Engine, body []core.Coord, food core.Coord, facing core.Direction) {
	e.Start()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Body = slices.Clone(body)
	e.state.Food = food
	e.state.Facing = facing
}

func mustSnapshot(t *testing.T, e *Engine) State {
	t.Helper()
	s, ok := e.Snapshot()
	if !ok {
		t.Fatal("engine has no state")
	}
	return s
}

func TestNoStateBeforeStart(t *testing.T) {
	e, sched := newTestEngine(core.ModePassThrough)

	if _, ok := e.Snapshot(); ok {
		t.Error("Snapshot should report no state before Start")
	}

	// Intents before start are ignored
	e.Tick()
	e.Pause()
	e.Resume()
	e.RequestDirection(core.DirUp)
	if _, ok := e.Snapshot(); ok {
		t.Error("intents before Start must not create state")
	}
	if len(sched.Pending()) != 0 {
		t.Error("nothing should be scheduled before Start")
	}
}

func TestStartSeedsLayout(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	e.Start()

	s := mustSnapshot(t, e)
	wantBody := []core.Coord{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}}
	if !slices.Equal(s.Body, wantBody) {
		t.Errorf("Body = %v, want %v", s.Body, wantBody)
	}
	if s.Food != (core.Coord{X: 15, Y: 15}) {
		t.Errorf("Food = %v, want (15,15)", s.Food)
	}
	if s.Facing != core.DirRight {
		t.Errorf("Facing = %v, want RIGHT", s.Facing)
	}
	if s.Score != 0 || s.Status != StatusRunning || s.TickInterval != 150*time.Millisecond {
		t.Errorf("unexpected seed state: %s", s.DebugString())
	}
}

func TestEatingFood(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	placeSnake(e,
		[]core.Coord{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}},
		core.Coord{X: 11, Y: 10},
		core.DirRight,
	)

	e.Tick()
	s := mustSnapshot(t, e)

	wantBody := []core.Coord{{X: 11, Y: 10}, {X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}}
	if !slices.Equal(s.Body, wantBody) {
		t.Errorf("Body = %v, want %v", s.Body, wantBody)
	}
	if s.Score != 1 {
		t.Errorf("Score = %d, want 1", s.Score)
	}
	if s.Food == (core.Coord{X: 11, Y: 10}) || s.Occupies(s.Food) {
		t.Errorf("new food %v overlaps the snake", s.Food)
	}
	if s.TickInterval != 148*time.Millisecond {
		t.Errorf("TickInterval = %s, want 148ms", s.TickInterval)
	}
}

func TestNonEatingMove(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	placeSnake(e,
		[]core.Coord{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}},
		core.Coord{X: 15, Y: 15},
		core.DirRight,
	)

	e.Tick()
	s := mustSnapshot(t, e)

	wantBody := []core.Coord{{X: 11, Y: 10}, {X: 10, Y: 10}, {X: 9, Y: 10}}
	if !slices.Equal(s.Body, wantBody) {
		t.Errorf("Body = %v, want %v", s.Body, wantBody)
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0", s.Score)
	}
	if s.Tick != 1 {
		t.Errorf("Tick = %d, want 1", s.Tick)
	}
}

func TestIntervalFloor(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	e.Start()
	e.mu.Lock()
	e.state.TickInterval = 51 * time.Millisecond
	e.state.Food = core.Coord{X: 11, Y: 10}
	e.mu.Unlock()

	e.Tick()
	if s := mustSnapshot(t, e); s.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %s, want floor 50ms", s.TickInterval)
	}
}

func TestPassThroughWraps(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	placeSnake(e,
		[]core.Coord{{X: 19, Y: 4}, {X: 18, Y: 4}, {X: 17, Y: 4}},
		core.Coord{X: 5, Y: 15},
		core.DirRight,
	)

	e.Tick()
	s := mustSnapshot(t, e)
	if s.Head() != (core.Coord{X: 0, Y: 4}) {
		t.Errorf("Head = %v, want (0,4)", s.Head())
	}
	if s.Status != StatusRunning {
		t.Errorf("Status = %v, pass-through must never go out of bounds", s.Status)
	}
}

func TestWallsOutOfBounds(t *testing.T) {
	e, _ := newTestEngine(core.ModeWalls)
	body := []core.Coord{{X: 0, Y: 4}, {X: 1, Y: 4}, {X: 2, Y: 4}}
	placeSnake(e, body, core.Coord{X: 5, Y: 15}, core.DirLeft)

	before := mustSnapshot(t, e)
	e.Tick()
	s := mustSnapshot(t, e)

	if s.Status != StatusOver {
		t.Fatalf("Status = %v, want OVER", s.Status)
	}
	if !slices.Equal(s.Body, before.Body) {
		t.Errorf("Body changed on collision: %v -> %v", before.Body, s.Body)
	}
	if s.Score != before.Score {
		t.Errorf("Score changed on collision: %d -> %d", before.Score, s.Score)
	}
}

func TestWallsRightEdge(t *testing.T) {
	e, _ := newTestEngine(core.ModeWalls)
	placeSnake(e,
		[]core.Coord{{X: 19, Y: 4}, {X: 18, Y: 4}, {X: 17, Y: 4}},
		core.Coord{X: 5, Y: 15},
		core.DirRight,
	)

	e.Tick()
	if s := mustSnapshot(t, e); s.Status != StatusOver {
		t.Errorf("Status = %v, want OVER at x = gridSize", s.Status)
	}
}

var tailChaseBody = []core.Coord{
	{X: 10, Y: 10}, // Head
	{X: 11, Y: 10},
	{X: 11, Y: 9},
	{X: 10, Y: 9},
	{X: 9, Y: 9},
	{X: 9, Y: 10}, // Tail, left of the head
}

func TestMoveOntoVacatedTail(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	placeSnake(e, tailChaseBody, core.Coord{X: 15, Y: 15}, core.DirLeft)

	e.Tick()
	s := mustSnapshot(t, e)
	if s.Status != StatusRunning {
		t.Fatalf("Status = %v, moving onto the vacated tail must be legal", s.Status)
	}
	if s.Head() != (core.Coord{X: 9, Y: 10}) {
		t.Errorf("Head = %v, want (9,10)", s.Head())
	}
	if len(s.Body) != len(tailChaseBody) {
		t.Errorf("Body length = %d, want %d", len(s.Body), len(tailChaseBody))
	}
}

func TestMoveOntoTailWhileEating(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	// Food on the tail cell: the tail stays, so the move is a collision.
	placeSnake(e, tailChaseBody, core.Coord{X: 9, Y: 10}, core.DirLeft)

	e.Tick()
	s := mustSnapshot(t, e)
	if s.Status != StatusOver {
		t.Fatalf("Status = %v, want OVER when the tail is not vacated", s.Status)
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, collision must not score", s.Score)
	}
}

func TestSelfCollision(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	placeSnake(e, []core.Coord{
		{X: 5, Y: 5}, // Head
		{X: 5, Y: 6},
		{X: 6, Y: 6},
		{X: 6, Y: 5},
		{X: 6, Y: 4},
	}, core.Coord{X: 15, Y: 15}, core.DirUp)

	// Turning right puts the head on (6,5), which stays occupied
	e.RequestDirection(core.DirRight)
	e.Tick()

	if s := mustSnapshot(t, e); s.Status != StatusOver {
		t.Error("Game should be over after self collision")
	}
}

func TestNoImmediateReversal(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	e.Start()

	e.RequestDirection(core.DirLeft)
	if s := mustSnapshot(t, e); s.HasPending {
		t.Errorf("reversal should be dropped, pending = %v", s.Pending)
	}

	e.RequestDirection(core.DirDown)
	s := mustSnapshot(t, e)
	if !s.HasPending || s.Pending != core.DirDown {
		t.Fatalf("pending = %v/%v, want DOWN", s.Pending, s.HasPending)
	}

	// Reversal is judged against the facing, not the pending turn:
	// UP is the opposite of the pending DOWN but not of RIGHT.
	e.RequestDirection(core.DirUp)
	if s := mustSnapshot(t, e); s.Pending != core.DirUp {
		t.Errorf("pending = %v, want UP", s.Pending)
	}

	// LEFT is still the opposite of the current facing
	e.RequestDirection(core.DirLeft)
	if s := mustSnapshot(t, e); s.Pending != core.DirUp {
		t.Errorf("pending = %v, reversal must not overwrite", s.Pending)
	}

	e.Tick()
	s = mustSnapshot(t, e)
	if s.Facing != core.DirUp || s.HasPending {
		t.Errorf("after tick facing = %v pending = %v, want UP and empty", s.Facing, s.HasPending)
	}
	if s.Head() != (core.Coord{X: 10, Y: 9}) {
		t.Errorf("Head = %v, want (10,9)", s.Head())
	}
}

func TestPauseResume(t *testing.T) {
	e, _ := newTestEngine(core.ModePassThrough)
	e.Start()

	e.Resume() // Illegal while running
	if s := mustSnapshot(t, e); s.Status != StatusRunning {
		t.Fatalf("Status = %v, want RUNNING", s.Status)
	}

	e.Pause()
	e.Pause() // Illegal while paused
	before := mustSnapshot(t, e)
	if before.Status != StatusPaused {
		t.Fatalf("Status = %v, want PAUSED", before.Status)
	}

	e.Tick()
	after := mustSnapshot(t, e)
	if !slices.Equal(before.Body, after.Body) || after.Tick != before.Tick {
		t.Error("Tick while paused must be a no-op")
	}

	e.Resume()
	if s := mustSnapshot(t, e); s.Status != StatusRunning {
		t.Errorf("Status = %v, want RUNNING after resume", s.Status)
	}
}

func TestOverIsTerminal(t *testing.T) {
	e, _ := newTestEngine(core.ModeWalls)
	placeSnake(e, []core.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, core.Coord{X: 9, Y: 9}, core.DirUp)
	e.Tick()

	over := mustSnapshot(t, e)
	if over.Status != StatusOver {
		t.Fatalf("Status = %v, want OVER", over.Status)
	}

	e.Pause()
	e.Resume()
	e.RequestDirection(core.DirDown)
	e.Tick()

	s := mustSnapshot(t, e)
	if s.Status != StatusOver || !slices.Equal(s.Body, over.Body) || s.HasPending {
		t.Errorf("state changed after OVER: %s", s.DebugString())
	}

	e.Restart()
	s = mustSnapshot(t, e)
	if s.Status != StatusRunning || s.Score != 0 || len(s.Body) != 3 {
		t.Errorf("Restart should seed a fresh state, got %s", s.DebugString())
	}
}

func TestInvariantsHold(t *testing.T) {
	for _, mode := range []core.Mode{core.ModePassThrough, core.ModeWalls} {
		e, _ := newTestEngine(mode)
		rng := rand.New(rand.NewSource(2024))
		e.Start()

		prevInterval := mustSnapshot(t, e).TickInterval
		for i := 0; i < 2000; i++ {
			e.RequestDirection(core.Directions[rng.Intn(len(core.Directions))])
			e.Tick()

			s := mustSnapshot(t, e)
			if s.Occupies(s.Food) {
				t.Fatalf("%s tick %d: food %v inside body", mode, i, s.Food)
			}
			seen := make(map[core.Coord]bool, len(s.Body))
			for _, c := range s.Body {
				if seen[c] {
					t.Fatalf("%s tick %d: duplicate cell %v", mode, i, c)
				}
				seen[c] = true
				if !core.InBounds(c, s.GridSize) {
					t.Fatalf("%s tick %d: cell %v out of range", mode, i, c)
				}
			}
			if s.TickInterval > prevInterval || s.TickInterval < e.cfg.MinInterval {
				t.Fatalf("%s tick %d: interval %s after %s", mode, i, s.TickInterval, prevInterval)
			}
			prevInterval = s.TickInterval

			if s.Status == StatusOver {
				e.Restart()
				prevInterval = mustSnapshot(t, e).TickInterval
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	// Two engines with the same seed and inputs produce identical states
	e1, _ := newTestEngine(core.ModePassThrough)
	e2, _ := newTestEngine(core.ModePassThrough)
	e1.Start()
	e2.Start()

	for i := 0; i < 300; i++ {
		if i%7 == 0 {
			d := core.Directions[(i/7)%len(core.Directions)]
			e1.RequestDirection(d)
			e2.RequestDirection(d)
		}
		e1.Tick()
		e2.Tick()
	}

	s1 := mustSnapshot(t, e1)
	s2 := mustSnapshot(t, e2)
	if !slices.Equal(s1.Body, s2.Body) || s1.Food != s2.Food || s1.Score != s2.Score || s1.Status != s2.Status {
		t.Errorf("states diverged:\n%s\n%s", s1.DebugString(), s2.DebugString())
	}
}

func TestSchedulerDrivesTicks(t *testing.T) {
	e, sched := newTestEngine(core.ModePassThrough)
	e.Start()

	if p := sched.Pending(); len(p) != 1 || p[0] != 150*time.Millisecond {
		t.Fatalf("Pending after start = %v, want [150ms]", p)
	}

	// Put food in front of the head so the next tick speeds up
	e.mu.Lock()
	e.state.Food = core.Coord{X: 11, Y: 10}
	e.mu.Unlock()

	if !sched.Fire() {
		t.Fatal("expected a scheduled tick")
	}
	if s := mustSnapshot(t, e); s.Score != 1 || s.Tick != 1 {
		t.Fatalf("scheduled tick did not run: %s", s.DebugString())
	}
	if p := sched.Pending(); len(p) != 1 || p[0] != 148*time.Millisecond {
		t.Fatalf("Pending after eating = %v, want [148ms]", p)
	}

	e.Pause()
	if p := sched.Pending(); len(p) != 0 {
		t.Fatalf("Pending after pause = %v, want none", p)
	}

	e.Resume()
	if p := sched.Pending(); len(p) != 1 {
		t.Fatalf("Pending after resume = %v, want one tick", p)
	}

	e.Close()
	if p := sched.Pending(); len(p) != 0 {
		t.Fatalf("Pending after close = %v, want none", p)
	}
	e.Start()
	if p := sched.Pending(); len(p) != 0 {
		t.Error("Start after Close must not schedule")
	}
}

func TestStaleTimerIgnored(t *testing.T) {
	e, sched := newTestEngine(core.ModePassThrough)
	e.Start()

	// Capture the first timer's callback, then restart so it is replaced.
	sched.mu.Lock()
	stale := sched.pending[0].f
	sched.mu.Unlock()
	e.Restart()

	stale()
	if s := mustSnapshot(t, e); s.Tick != 0 {
		t.Errorf("stale timer advanced the engine to tick %d", s.Tick)
	}
}

func TestObserverReceivesSnapshots(t *testing.T) {
	e, sched := newTestEngine(core.ModePassThrough)

	var got []State
	e.Observe(func(s State) {
		got = append(got, s)
	})

	e.Start()
	sched.Fire()
	sched.Fire()

	if len(got) != 3 {
		t.Fatalf("observer got %d snapshots, want 3 (start + 2 ticks)", len(got))
	}
	for i, s := range got {
		if s.Tick != uint64(i) {
			t.Errorf("snapshot %d has tick %d", i, s.Tick)
		}
	}

	// Snapshots are copies
	got[0].Body[0] = core.Coord{X: -5, Y: -5}
	if s := mustSnapshot(t, e); s.Occupies(core.Coord{X: -5, Y: -5}) {
		t.Error("mutating a snapshot leaked into the engine")
	}
}

func TestObserverSeesPauseAndResume(t *testing.T) {
	e, sched := newTestEngine(core.ModePassThrough)

	var got []Status
	e.Observe(func(s State) {
		got = append(got, s.Status)
	})

	e.Start()
	sched.Fire()
	e.Pause()
	e.Pause() // Illegal while paused, no emission
	e.Resume()
	e.Resume() // Illegal while running, no emission

	want := []Status{StatusRunning, StatusRunning, StatusPaused, StatusRunning}
	if !slices.Equal(got, want) {
		t.Fatalf("observed statuses %v, want %v", got, want)
	}

	// Pause and resume do not advance the simulation
	s := mustSnapshot(t, e)
	if s.Tick != 1 {
		t.Errorf("Tick = %d, want 1", s.Tick)
	}
}

func TestRealSchedulerTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseInterval = 5 * time.Millisecond
	cfg.MinInterval = time.Millisecond
	cfg.Seed = 1
	e := NewEngine(cfg)
	defer e.Close()

	ticks := make(chan State, 16)
	e.Observe(func(s State) {
		select {
		case ticks <- s:
		default:
		}
	})
	e.Start()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ticks:
			if s.Tick >= 2 {
				return
			}
		case <-deadline:
			t.Fatal("timer-driven engine did not tick")
		}
	}
}

func TestWithSeedLayout(t *testing.T) {
	body := []core.Coord{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}}
	e := NewEngine(DefaultConfig(),
		WithScheduler(NewManualScheduler()),
		WithRand(rand.New(rand.NewSource(3))),
		WithSeedLayout(body, core.Coord{X: 11, Y: 10}),
	)
	e.Start()
	e.Tick()
	if s := mustSnapshot(t, e); s.Score != 1 || len(s.Body) != 4 {
		t.Fatalf("seeded food not eaten: %s", s.DebugString())
	}

	// Restart begins from the same layout again
	e.Restart()
	if s := mustSnapshot(t, e); s.Food != (core.Coord{X: 11, Y: 10}) || len(s.Body) != 3 {
		t.Errorf("Restart did not reuse the seed layout: %s", s.DebugString())
	}
}
