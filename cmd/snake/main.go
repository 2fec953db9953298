// snake is a terminal snake game with live spectating over the network.
//
// Usage:
//
//	snake play                  - Play locally (menu unless --mode is given)
//	snake serve                 - Start the HTTP spectator API and the SSH server
//	snake watch [player-id]     - Watch a player on a running server
//	snake scores [--mode]       - Show the leaderboard
//	snake scores --user <name>  - Show one player's best scores
//	snake scores stats          - Show per-mode statistics
//	snake scores export <file>  - Export the leaderboard to Parquet
//	snake ticklog dump <file>   - Print a recorded tick log
//
// Global flags:
//
//	--config <path>     - Config YAML (default: search ~/.snake/configs, ./configs)
//	--seed <value>      - Set RNG seed for reproducible food placement
//	--db <path>         - Set database path (default: from config)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anton-goran/snake-game-cosmic/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake - play, host and watch snake games in your terminal",
	Long: `Snake is a terminal snake game. Games can be played locally or over
SSH, and every game on a server can be watched live by other players.

Available commands:
  play     - Play a game locally
  serve    - Start the HTTP and SSH servers
  watch    - Watch a player on a server
  scores   - View, summarize and export the leaderboard
  ticklog  - Inspect server tick logs

Examples:
  snake play --mode walls --difficulty hard
  snake serve --http :8080 --ssh :23234
  snake watch --server http://localhost:8080
  snake scores --mode walls`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, then time based)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(ticklogCmd)
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSeed != 0 {
		cfg.Game.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, nil
}

// newLogger creates the process logger writing to stderr.
func newLogger(prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// terminalSize returns the terminal size, falling back to 80x24.
func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
