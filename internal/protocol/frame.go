// Package protocol defines the JSON frames spectators receive.
package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/anton-goran/snake-game-cosmic/internal/core"
	"github.com/anton-goran/snake-game-cosmic/internal/games/snake"
)

//go:embed schemas/frame.schema.json
var frameSchemaJSON string

var frameSchema = jsonschema.MustCompileString("frame.schema.json", frameSchemaJSON)

// Frame is one state snapshot on the wire.
type Frame struct {
	Seq            uint64       `json:"seq"`
	Tick           uint64       `json:"tick"`
	Snake          []core.Coord `json:"snake"`
	Food           core.Coord   `json:"food"`
	Score          int          `json:"score"`
	Direction      string       `json:"direction"`
	Status         string       `json:"status"`
	Mode           string       `json:"mode"`
	GridSize       int          `json:"gridSize"`
	TickIntervalMs int64        `json:"tickIntervalMs"`
}

// FromState builds the frame for s with sequence number seq.
func FromState(seq uint64, s snake.State) Frame {
	return Frame{
		Seq:            seq,
		Tick:           s.Tick,
		Snake:          s.Body,
		Food:           s.Food,
		Score:          s.Score,
		Direction:      s.Facing.String(),
		Status:         s.Status.String(),
		Mode:           s.Mode.String(),
		GridSize:       s.GridSize,
		TickIntervalMs: s.TickInterval.Milliseconds(),
	}
}

// State converts the frame back into the snapshot shape the engine emits.
// The pending direction is not part of the wire format.
func (f Frame) State() (snake.State, error) {
	facing, err := core.ParseDirection(f.Direction)
	if err != nil {
		return snake.State{}, fmt.Errorf("protocol: %w", err)
	}
	status, err := snake.ParseStatus(f.Status)
	if err != nil {
		return snake.State{}, fmt.Errorf("protocol: %w", err)
	}
	mode, err := core.ParseMode(f.Mode)
	if err != nil {
		return snake.State{}, fmt.Errorf("protocol: %w", err)
	}
	return snake.State{
		Body:         append([]core.Coord(nil), f.Snake...),
		Food:         f.Food,
		Facing:       facing,
		Score:        f.Score,
		TickInterval: time.Duration(f.TickIntervalMs) * time.Millisecond,
		Status:       status,
		Mode:         mode,
		GridSize:     f.GridSize,
		Tick:         f.Tick,
	}, nil
}

// Encode marshals the frame.
func Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// Validate checks raw JSON against the frame schema.
func Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("protocol: invalid json: %w", err)
	}
	if err := frameSchema.Validate(v); err != nil {
		return fmt.Errorf("protocol: frame rejected: %w", err)
	}
	return nil
}

// Decode validates data and unmarshals it into a Frame.
func Decode(data []byte) (Frame, error) {
	if err := Validate(data); err != nil {
		return Frame{}, err
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("protocol: decode frame: %w", err)
	}
	return f, nil
}
