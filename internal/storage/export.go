package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// ArchiveRow is one leaderboard entry in the parquet archive.
type ArchiveRow struct {
	ID         string `parquet:"id"`
	Username   string `parquet:"username,dict"`
	Score      int32  `parquet:"score"`
	Mode       string `parquet:"mode,dict"`
	PlayedAtMs int64  `parquet:"played_at_ms"`
}

// ExportParquet writes every entry for mode (all modes when empty) to
// outPath. Returns the number of rows written.
func (s *Store) ExportParquet(outPath, mode string) (int, error) {
	entries, err := s.AllScores(mode)
	if err != nil {
		return 0, err
	}

	rows := make([]ArchiveRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ArchiveRow{
			ID:         e.ID,
			Username:   e.Username,
			Score:      int32(e.Score),
			Mode:       e.Mode,
			PlayedAtMs: e.CreatedAt.UnixMilli(),
		})
	}

	if err := WriteArchiveParquet(outPath, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteArchiveParquet writes rows to outPath via a temp file and rename.
func WriteArchiveParquet(outPath string, rows []ArchiveRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("storage: create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "leaderboard_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage: rename parquet: %w", err)
	}
	return nil
}
