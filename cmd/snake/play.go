package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anton-goran/snake-game-cosmic/internal/config"
	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
	"github.com/anton-goran/snake-game-cosmic/internal/platform/tui"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
)

var (
	flagMode       string
	flagDifficulty string
	flagUser       string
	flagLogFile    string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game locally",
	Long: `Start a game in this terminal. Without --mode a menu lets you pick
the wall mode and the difficulty.

Controls:
  Arrows/WASD/HJKL  - Turn
  P/Space           - Pause and resume
  R                 - Restart (after game over)
  Q/Esc/Ctrl+C      - Quit

Modes:
  pass-through  - Leaving one edge re-enters on the opposite edge
  walls         - Leaving the grid ends the game

Difficulty options:
  easy    - 200ms per tick at start
  normal  - 150ms per tick at start
  hard    - 100ms per tick at start
  fixed   - Configured speed, no speed-up when eating

Scores are saved under --user (default $USER) when the game ends.

Examples:
  snake play
  snake play --mode walls --difficulty hard
  snake play --seed 42 --config ./my-snake.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Wall mode: pass-through or walls (default: show menu)")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagUser, "user", os.Getenv("USER"), "Name to save scores under (empty disables saving)")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file while playing")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := playLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	mode, err := core.ParseMode(cfg.Game.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	preset := config.DifficultyPreset(flagDifficulty)
	if !preset.Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown difficulty %q (use easy, normal, hard, fixed)\n", flagDifficulty)
		os.Exit(1)
	}

	width, height := terminalSize()
	if flagMode != "" {
		if mode, err = core.ParseMode(flagMode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		res, err := tui.RunMenu(mode, preset, width, height)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		switch {
		case res.Quit:
			return
		case res.WantsScoreboard:
			runScoreboard(cfg, "", width, height)
			return
		}
		mode, preset = res.Mode, res.Difficulty
	}

	rules, err := cfg.EngineFor(mode, preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Scores are best effort; play continues without a database.
	var saver tui.ScoreSaver
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("Could not open scores database", "path", cfg.Storage.DBPath, "error", err)
	} else {
		defer store.Close()
		saver = store
	}

	engine := snake.NewEngine(rules)
	defer engine.Close()

	if err := tui.RunPlay(engine, tui.PlayOptions{
		Username: flagUser,
		Store:    saver,
		Logger:   logger,
		Width:    width,
		Height:   height,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// playLogger returns a logger that does not draw over the game screen.
func playLogger() (*log.Logger, func(), error) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "snake-play",
		Level:           level,
	})
	return logger, func() { f.Close() }, nil
}
