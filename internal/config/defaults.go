package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			GridSize:       20,
			Mode:           "pass-through",
			BaseIntervalMs: 150,
			MinIntervalMs:  50,
			IntervalStepMs: 2,
		},
		Server: ServerConfig{
			HTTPAddr:    ":8080",
			SSHAddr:     ":23234",
			HostKey:     ".ssh/snake_ed25519",
			IdleTimeout: 30,
		},
		Storage: StorageConfig{
			DBPath: "~/.snake/scores.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSnakeYAML
}
