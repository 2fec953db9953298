package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snake.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	cfg, err := parse(DefaultYAML())
	if err != nil {
		t.Fatalf("parse embedded default: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded default %+v differs from Default() %+v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadCustomPathKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "game:\n  mode: walls\n  grid_size: 30\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.Mode != "walls" || cfg.Game.GridSize != 30 {
		t.Errorf("file values not applied: %+v", cfg.Game)
	}
	if cfg.Game.BaseIntervalMs != 150 || cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"tiny grid":     "game:\n  grid_size: 3\n",
		"bad mode":      "game:\n  mode: donut\n",
		"zero floor":    "game:\n  min_interval_ms: 0\n",
		"base < floor":  "game:\n  base_interval_ms: 40\n",
		"negative step": "game:\n  interval_step_ms: -1\n",
		"bad preset":    "difficulty: insane\n",
		"bad yaml":      "game: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPresets(t *testing.T) {
	for _, tt := range []struct {
		preset   DifficultyPreset
		wantBase int
		wantStep int
	}{
		{DifficultyEasy, 200, 2},
		{DifficultyNormal, 150, 2},
		{DifficultyHard, 100, 2},
		{DifficultyFixed, 150, 0},
	} {
		cfg := Default()
		ApplyPreset(&cfg, tt.preset)
		if cfg.Game.BaseIntervalMs != tt.wantBase || cfg.Game.IntervalStepMs != tt.wantStep {
			t.Errorf("%s: base=%d step=%d, want %d/%d", tt.preset, cfg.Game.BaseIntervalMs, cfg.Game.IntervalStepMs, tt.wantBase, tt.wantStep)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", tt.preset, err)
		}
	}
}

func TestPresetFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "difficulty: hard\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.BaseIntervalMs != 100 {
		t.Errorf("BaseIntervalMs = %d, want 100", cfg.Game.BaseIntervalMs)
	}
}

func TestEngineConversion(t *testing.T) {
	g := Default().Game
	g.Mode = "walls"
	ec, err := g.Engine()
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	if ec.Mode != core.ModeWalls || ec.BaseInterval != 150*time.Millisecond ||
		ec.MinInterval != 50*time.Millisecond || ec.IntervalStep != 2*time.Millisecond || ec.GridSize != 20 {
		t.Errorf("unexpected engine config %+v", ec)
	}

	if d := Default().Server.IdleTimeoutDuration(); d != 30*time.Minute {
		t.Errorf("IdleTimeoutDuration = %s", d)
	}
}

func TestEngineForSelection(t *testing.T) {
	cfg := Default()

	ec, err := cfg.EngineFor(core.ModeWalls, DifficultyEasy)
	if err != nil {
		t.Fatalf("EngineFor: %v", err)
	}
	if ec.Mode != core.ModeWalls || ec.BaseInterval != 200*time.Millisecond {
		t.Errorf("easy walls = %+v", ec)
	}

	ec, err = cfg.EngineFor(core.ModePassThrough, DifficultyFixed)
	if err != nil {
		t.Fatalf("EngineFor: %v", err)
	}
	if ec.IntervalStep != 0 || ec.BaseInterval != 150*time.Millisecond {
		t.Errorf("fixed = %+v", ec)
	}

	// The receiver is not modified
	if cfg.Game.Mode != "pass-through" || cfg.Game.IntervalStepMs != 2 {
		t.Errorf("EngineFor mutated config: %+v", cfg.Game)
	}

	if _, err := cfg.EngineFor(core.ModeWalls, "insane"); err == nil {
		t.Error("expected error for unknown preset")
	}
}
