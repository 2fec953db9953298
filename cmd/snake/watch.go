package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/anton-goran/snake-game-cosmic/internal/platform/tui"
	"github.com/anton-goran/snake-game-cosmic/internal/protocol"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
)

var (
	flagServerURL string
	flagPlain     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [player-id]",
	Short: "Watch a player on a running server",
	Long: `Watch live games on a snake server. Without a player id the first
active player is shown; tab and shift+tab switch between players.

With --plain (or when stdout is not a terminal) one line per frame is
printed instead of the board.

Examples:
  snake watch --server http://localhost:8080
  snake watch player_1a2b3c4d --server http://snake.example.com
  snake watch player_1a2b3c4d --plain | tee frames.txt`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagServerURL, "server", "http://localhost:8080", "Server base URL")
	watchCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print frames as text lines")
}

func runWatch(_ *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	players, err := fetchActive(ctx, flagServerURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing players: %v\n", err)
		os.Exit(1)
	}

	start := 0
	if len(args) == 1 {
		start = -1
		for i, p := range players {
			if p.ID == args[0] {
				start = i
			}
		}
		if start < 0 {
			// Let the subscription report the unknown id.
			players = append([]protocol.Player{{ID: args[0], Username: "?"}}, players...)
			start = 0
		}
	}
	if len(players) == 0 {
		fmt.Println("No active players.")
		return
	}

	// The spectator screen owns the terminal; client logs are dropped.
	src, err := spectate.NewWSSource(flagServerURL, log.New(io.Discard))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	feed := spectate.NewFeed(src)
	defer feed.Unsubscribe()

	if flagPlain || !isTerminal() {
		if err := watchPlain(ctx, feed, players[start]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := tui.RunWatch(ctx, feed, players, start); err != nil {
		fmt.Fprintf(os.Stderr, "Error running spectator: %v\n", err)
		os.Exit(1)
	}
}

// watchPlain prints one line per frame until the stream ends.
func watchPlain(ctx context.Context, feed *spectate.Feed, p protocol.Player) error {
	seq, err := feed.Subscribe(ctx, p.ID)
	if err != nil {
		return err
	}
	for st := range seq.All(ctx) {
		head := st.Head()
		fmt.Printf("tick=%d status=%s score=%d length=%d head=(%d,%d) food=(%d,%d) interval=%dms\n",
			st.Tick, st.Status, st.Score, len(st.Body), head.X, head.Y, st.Food.X, st.Food.Y,
			st.TickInterval.Milliseconds())
	}
	if err := seq.Err(); err != nil {
		return fmt.Errorf("connection lost: %w", err)
	}
	if ctx.Err() == nil {
		fmt.Println("Stream ended.")
	}
	return nil
}

// fetchActive lists the active players of the server at baseURL.
func fetchActive(ctx context.Context, baseURL string) ([]protocol.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/players/active"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	var players []protocol.Player
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, fmt.Errorf("decode players: %w", err)
	}
	return players, nil
}
