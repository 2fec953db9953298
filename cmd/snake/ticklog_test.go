package main

import "testing"

func TestTicklogDumpRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"ticklog", "dump", "ticks.jsonl.zst"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cmd != ticklogDumpCmd {
		t.Fatalf("resolved %q, want ticklog dump", cmd.CommandPath())
	}
	if cmd.Flags().Lookup("delay") != nil {
		t.Error("dump must not pace frames")
	}
	for _, name := range []string{"player", "board"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s", name)
		}
	}

	if c, _, _ := rootCmd.Find([]string{"replay"}); c != rootCmd {
		t.Errorf("replay resolved to %q", c.CommandPath())
	}
}

func TestScoresUserFlag(t *testing.T) {
	if scoresCmd.Flags().Lookup("user") == nil {
		t.Error("scores lacks --user")
	}
}
