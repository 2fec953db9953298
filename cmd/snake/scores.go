package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/anton-goran/snake-game-cosmic/internal/config"
	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/platform/tui"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
)

var (
	flagScoresMode  string
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresUser  string
	flagClearAll    bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top scores, optionally for one mode.

Examples:
  snake scores
  snake scores --mode walls --limit 10
  snake scores --user alice
  snake scores --tui
  snake scores stats
  snake scores export leaderboard.parquet --mode walls`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

var scoresStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-mode statistics",
	Args:  cobra.NoArgs,
	Run:   runScoresStats,
}

var scoresExportCmd = &cobra.Command{
	Use:   "export <file.parquet>",
	Short: "Export the leaderboard to a Parquet file",
	Long: `Write every recorded score (or those of --mode) to a zstd-compressed
Parquet file, highest score first.`,
	Args: cobra.ExactArgs(1),
	Run:  runScoresExport,
}

var scoresClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded scores",
	Long: `Delete the scores of --mode, or of every mode with --all.

Examples:
  snake scores clear --mode walls
  snake scores clear --all`,
	Args: cobra.NoArgs,
	Run:  runScoresClear,
}

func init() {
	scoresCmd.PersistentFlags().StringVar(&flagScoresMode, "mode", "", "Only this mode: pass-through or walls")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of entries to show (max 50)")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse the leaderboard interactively")
	scoresCmd.Flags().StringVar(&flagScoresUser, "user", "", "Only the best scores of this player (all modes)")
	scoresClearCmd.Flags().BoolVar(&flagClearAll, "all", false, "Delete scores of every mode")

	scoresCmd.AddCommand(scoresStatsCmd)
	scoresCmd.AddCommand(scoresExportCmd)
	scoresCmd.AddCommand(scoresClearCmd)
}

// openStore loads the config and opens the scores database, exiting on error.
func openStore() (config.Config, *storage.Store) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagScoresMode != "" {
		if _, err := core.ParseMode(flagScoresMode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	return cfg, store
}

func runScores(_ *cobra.Command, _ []string) {
	if flagScoresLimit <= 0 || flagScoresLimit > storage.LeaderboardSize {
		fmt.Fprintf(os.Stderr, "Error: --limit must be between 1 and %d\n", storage.LeaderboardSize)
		os.Exit(1)
	}

	if flagScoresTUI {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		w, h := terminalSize()
		runScoreboard(cfg, flagScoresMode, w, h)
		return
	}

	if flagScoresUser != "" && flagScoresMode != "" {
		fmt.Fprintln(os.Stderr, "Error: --user and --mode cannot be combined")
		os.Exit(1)
	}

	_, store := openStore()
	defer store.Close()

	var (
		scores []storage.Entry
		err    error
	)
	title := "all modes"
	switch {
	case flagScoresUser != "":
		title = flagScoresUser
		scores, err = store.PlayerScores(flagScoresUser, flagScoresLimit)
	default:
		if flagScoresMode != "" {
			title = flagScoresMode
		}
		scores, err = store.TopScores(flagScoresMode, flagScoresLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snake play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-6s  %-12s  %s\n", "Rank", "Player", "Score", "Mode", "Date")
	fmt.Printf("  %-4s  %-16s  %-6s  %-12s  %s\n", "----", "------", "-----", "----", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-16s  %-6d  %-12s  %s\n",
			i+1, e.Username, e.Score, e.Mode, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if flagScoresUser != "" {
		fmt.Printf("Personal best: %d\n", scores[0].Score)
		return
	}
	if best, err := store.HighScore(flagScoresMode); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}

func runScoresStats(_ *cobra.Command, _ []string) {
	_, store := openStore()
	defer store.Close()

	stats, err := store.AllStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing stats: %v\n", err)
		os.Exit(1)
	}
	if len(stats) == 0 {
		fmt.Println("No scores recorded yet.")
		return
	}

	modes := make([]string, 0, len(stats))
	for m := range stats {
		if flagScoresMode == "" || m == flagScoresMode {
			modes = append(modes, m)
		}
	}
	sort.Strings(modes)

	fmt.Printf("  %-12s  %-6s  %-7s  %-5s  %-7s  %s\n", "Mode", "Games", "Players", "Best", "Average", "Last played")
	fmt.Printf("  %-12s  %-6s  %-7s  %-5s  %-7s  %s\n", "----", "-----", "-------", "----", "-------", "-----------")
	for _, m := range modes {
		s := stats[m]
		last := "-"
		if !s.LastPlayed.IsZero() {
			last = s.LastPlayed.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("  %-12s  %-6d  %-7d  %-5d  %-7.1f  %s\n", m, s.Games, s.Players, s.HighScore, s.AvgScore, last)
	}
}

func runScoresExport(_ *cobra.Command, args []string) {
	_, store := openStore()
	defer store.Close()

	n, err := store.ExportParquet(args[0], flagScoresMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting scores: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d scores to %s\n", n, args[0])
}

func runScoresClear(_ *cobra.Command, _ []string) {
	if flagScoresMode == "" && !flagClearAll {
		fmt.Fprintln(os.Stderr, "Error: pass --mode or --all")
		os.Exit(1)
	}
	_, store := openStore()
	defer store.Close()

	if err := store.ClearScores(flagScoresMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
		os.Exit(1)
	}
	if flagScoresMode == "" {
		fmt.Println("Cleared all scores.")
		return
	}
	fmt.Printf("Cleared %s scores.\n", flagScoresMode)
}

// runScoreboard opens the interactive leaderboard.
func runScoreboard(cfg config.Config, mode string, width, height int) {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := tui.RunScoreboard(store, mode, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "Error running scoreboard: %v\n", err)
		os.Exit(1)
	}
}
