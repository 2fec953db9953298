// Package config provides YAML-based configuration loading and difficulty
// presets for the snake binary.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
)

// Config is the full configuration file.
type Config struct {
	Game       GameConfig       `yaml:"game"`
	Difficulty DifficultyPreset `yaml:"difficulty"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
}

// GameConfig defines the simulation rules.
type GameConfig struct {
	GridSize       int    `yaml:"grid_size"`
	Mode           string `yaml:"mode"`
	BaseIntervalMs int    `yaml:"base_interval_ms"`
	MinIntervalMs  int    `yaml:"min_interval_ms"`
	IntervalStepMs int    `yaml:"interval_step_ms"`
	Seed           int64  `yaml:"seed"`
}

// ServerConfig defines the network listeners of `snake serve`.
type ServerConfig struct {
	HTTPAddr    string `yaml:"http_addr"`
	SSHAddr     string `yaml:"ssh_addr"`
	HostKey     string `yaml:"host_key"`
	IdleTimeout int    `yaml:"idle_timeout"` // Minutes
	TickLogDir  string `yaml:"tick_log_dir"`
}

// StorageConfig defines where the leaderboard lives.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	g := c.Game
	if g.GridSize < 4 {
		return fmt.Errorf("config: game.grid_size must be at least 4, got %d", g.GridSize)
	}
	if _, err := core.ParseMode(g.Mode); err != nil {
		return fmt.Errorf("config: game.mode: %w", err)
	}
	if g.MinIntervalMs <= 0 {
		return errors.New("config: game.min_interval_ms must be positive")
	}
	if g.BaseIntervalMs < g.MinIntervalMs {
		return fmt.Errorf("config: game.base_interval_ms (%d) is below min_interval_ms (%d)", g.BaseIntervalMs, g.MinIntervalMs)
	}
	if g.IntervalStepMs < 0 {
		return errors.New("config: game.interval_step_ms must not be negative")
	}
	if c.Server.IdleTimeout < 0 {
		return errors.New("config: server.idle_timeout must not be negative")
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("config: unknown difficulty %q", c.Difficulty)
	}
	return nil
}

// Engine converts the game section into engine rules.
func (g GameConfig) Engine() (snake.Config, error) {
	mode, err := core.ParseMode(g.Mode)
	if err != nil {
		return snake.Config{}, fmt.Errorf("config: %w", err)
	}
	return snake.Config{
		GridSize:     g.GridSize,
		Mode:         mode,
		BaseInterval: time.Duration(g.BaseIntervalMs) * time.Millisecond,
		MinInterval:  time.Duration(g.MinIntervalMs) * time.Millisecond,
		IntervalStep: time.Duration(g.IntervalStepMs) * time.Millisecond,
		Seed:         g.Seed,
	}, nil
}

// IdleTimeoutDuration returns the SSH idle timeout, zero meaning none.
func (s ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Minute
}

// EngineFor returns engine rules for a player's selection on top of c.
// An empty preset keeps the configured intervals.
func (c Config) EngineFor(mode core.Mode, preset DifficultyPreset) (snake.Config, error) {
	if !preset.Valid() {
		return snake.Config{}, fmt.Errorf("config: unknown difficulty %q", preset)
	}
	sel := c
	if preset != DifficultyNone {
		ApplyPreset(&sel, preset)
	}
	sel.Game.Mode = mode.String()
	if err := sel.Validate(); err != nil {
		return snake.Config{}, err
	}
	return sel.Game.Engine()
}
