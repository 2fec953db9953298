package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/server"
	"github.com/anton-goran/snake-game-cosmic/internal/spectate"
)

func TestFetchActive(t *testing.T) {
	hub := spectate.NewHub()
	s := hub.Register("alice", core.ModeWalls)
	defer s.Close()

	ts := httptest.NewServer(server.New(hub, nil, nil).Handler())
	defer ts.Close()

	players, err := fetchActive(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("fetchActive: %v", err)
	}
	if len(players) != 1 || players[0].ID != s.ID() || players[0].Mode != "walls" {
		t.Errorf("players = %+v", players)
	}
}

func TestFetchActiveBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	if _, err := fetchActive(context.Background(), ts.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	flagConfig, flagSeed, flagDBPath = "", 99, "/tmp/scores-test.db"
	t.Cleanup(func() { flagSeed, flagDBPath = 0, "" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Game.Seed != 99 || cfg.Storage.DBPath != "/tmp/scores-test.db" {
		t.Errorf("overrides not applied: seed=%d db=%s", cfg.Game.Seed, cfg.Storage.DBPath)
	}
}
