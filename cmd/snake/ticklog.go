package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anton-goran/snake-game-cosmic/internal/platform/tui"
	"github.com/anton-goran/snake-game-cosmic/internal/ticklog"
)

var (
	flagDumpPlayer string
	flagDumpBoard  bool
)

var ticklogCmd = &cobra.Command{
	Use:   "ticklog",
	Short: "Inspect tick logs written by the server",
}

var ticklogDumpCmd = &cobra.Command{
	Use:   "dump <file.jsonl.zst>",
	Short: "Print the frames of a tick log",
	Long: `Print the frames of a tick log written by 'snake serve --tick-log',
one line per broadcast frame.

Examples:
  snake ticklog dump ticks/ticks-2026-01-02-15.jsonl.zst
  snake ticklog dump ticks/ticks-2026-01-02-15.jsonl.zst --player player_1a2b3c4d --board`,
	Args: cobra.ExactArgs(1),
	Run:  runTicklogDump,
}

func init() {
	ticklogDumpCmd.Flags().StringVar(&flagDumpPlayer, "player", "", "Only frames of this player id")
	ticklogDumpCmd.Flags().BoolVar(&flagDumpBoard, "board", false, "Draw the board for every frame")

	ticklogCmd.AddCommand(ticklogDumpCmd)
}

func runTicklogDump(_ *cobra.Command, args []string) {
	frames := 0
	err := ticklog.ReadFile(args[0], func(r ticklog.Record) error {
		if flagDumpPlayer != "" && r.Session != flagDumpPlayer {
			return nil
		}
		frames++

		f := r.Frame
		fmt.Printf("%s %s tick=%d status=%s score=%d length=%d\n",
			r.At.Local().Format("15:04:05.000"), r.Session, f.Tick, f.Status, f.Score, len(f.Snake))

		if flagDumpBoard {
			st, err := f.State()
			if err != nil {
				return fmt.Errorf("frame %d: %w", f.Seq, err)
			}
			fmt.Println(tui.RenderBoard(st))
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading tick log: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d frames\n", frames)
}
