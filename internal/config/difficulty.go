package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyNone   DifficultyPreset = ""
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Presets lists the selectable presets in menu order.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}

// Valid reports whether p is a known preset or empty.
func (p DifficultyPreset) Valid() bool {
	switch p {
	case DifficultyNone, DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return true
	}
	return false
}

// BaseIntervalForPreset returns the starting tick interval in milliseconds,
// or 0 when the preset keeps the configured value.
func BaseIntervalForPreset(p DifficultyPreset) int {
	switch p {
	case DifficultyEasy:
		return 200
	case DifficultyNormal:
		return 150
	case DifficultyHard:
		return 100
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset disables the speed-up.
func IsFixedPreset(p DifficultyPreset) bool {
	return p == DifficultyFixed
}

// ApplyPreset modifies the game rules based on a difficulty preset.
func ApplyPreset(cfg *Config, p DifficultyPreset) {
	cfg.Difficulty = p
	if IsFixedPreset(p) {
		cfg.Game.IntervalStepMs = 0
		return
	}
	if ms := BaseIntervalForPreset(p); ms > 0 {
		cfg.Game.BaseIntervalMs = ms
		if cfg.Game.MinIntervalMs > ms {
			cfg.Game.MinIntervalMs = ms
		}
	}
}
