package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anton-goran/snake-game-cosmic/internal/platform/tui"
	"github.com/anton-goran/snake-game-cosmic/internal/server"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
	"github.com/anton-goran/snake-game-cosmic/internal/storage"
	"github.com/anton-goran/snake-game-cosmic/internal/ticklog"
)

var (
	flagHTTPAddr    string
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagTickLogDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP spectator API and the SSH game server",
	Long: `Start an SSH server for remote play and an HTTP server that lists
active players, streams their games to spectators and serves the leaderboard.

Each SSH connection gets its own session with a mode picker. The SSH user
name is the player's name. All players share one leaderboard.

Flags override the server section of the config file.

Examples:
  snake serve                           # :8080 (HTTP) and :23234 (SSH)
  snake serve --ssh :2222 --http :9000
  snake serve --host-key ./my_host_key
  snake serve --tick-log ./ticks        # Record every broadcast frame

Players connect with:
  ssh localhost -p 23234
Spectators connect with:
  snake watch --server http://localhost:8080`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP server address (host:port)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (generated if missing)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", -1, "Idle timeout in minutes before disconnecting (0 = never)")
	serveCmd.Flags().StringVar(&flagTickLogDir, "tick-log", "", "Directory for the compressed tick log")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, err := newLogger("snake-serve")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("Could not load config", "error", err)
	}
	srvCfg := cfg.Server
	if flagHTTPAddr != "" {
		srvCfg.HTTPAddr = flagHTTPAddr
	}
	if flagSSHAddr != "" {
		srvCfg.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKey = flagHostKey
	}
	if flagIdleTimeout >= 0 {
		srvCfg.IdleTimeout = flagIdleTimeout
	}
	if flagTickLogDir != "" {
		srvCfg.TickLogDir = flagTickLogDir
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("Could not open scores database, leaderboard disabled", "path", cfg.Storage.DBPath, "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	hub := spectate.NewHub()
	defer hub.Close()

	if srvCfg.TickLogDir != "" {
		w := ticklog.NewWriter(srvCfg.TickLogDir, "ticks")
		defer w.Close()
		hub.SetRecorder(w, func(sessionID string, err error) {
			logger.Warn("Tick log write failed", "player", sessionID, "error", err)
		})
		logger.Info("Recording tick log", "dir", srvCfg.TickLogDir)
	}

	sshSrv, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     srvCfg.SSHAddr,
		HostKeyPath: srvCfg.HostKey,
		IdleTimeout: srvCfg.IdleTimeoutDuration(),
		Rules:       cfg,
	}, hub, store, logger.WithPrefix("snake-ssh"))
	if err != nil {
		logger.Fatal("Could not create SSH server", "error", err)
	}
	httpSrv := server.New(hub, store, logger.WithPrefix("snake-http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.ListenAndServe(ctx, srvCfg.HTTPAddr)
	})
	g.Go(func() error {
		return sshSrv.ListenAndServe(ctx)
	})

	logger.Info("Ready", "http", srvCfg.HTTPAddr, "ssh", srvCfg.SSHAddr)
	if err := g.Wait(); err != nil {
		logger.Error("Server stopped", "error", err)
		return
	}
	logger.Info("Shut down cleanly")
}
