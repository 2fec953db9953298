// Package storage provides SQLite-based persistence for the leaderboard.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// LeaderboardSize is the number of entries the public leaderboard shows.
const LeaderboardSize = 50

// Store manages the SQLite database connection for score persistence.
type Store struct {
	db *sql.DB
}

// Entry is one finished game on the leaderboard.
type Entry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"timestamp"`
}

// ModeStats contains aggregated statistics for one rule mode.
type ModeStats struct {
	Mode       string    `json:"mode"`
	Games      int       `json:"games"`
	Players    int       `json:"players"`
	HighScore  int       `json:"highScore"`
	AvgScore   float64   `json:"avgScore"`
	TotalScore int64     `json:"totalScore"`
	LastPlayed time.Time `json:"lastPlayed"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			score INTEGER NOT NULL,
			mode TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_mode_top ON scores(mode, score DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_username ON scores(username);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewEntryID returns an id of the form entry_<8 hex>.
func NewEntryID() string {
	return "entry_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// SaveScore records a finished game and returns the stored entry.
func (s *Store) SaveScore(username string, score int, mode string) (Entry, error) {
	if username == "" {
		return Entry{}, errors.New("storage: username is required")
	}
	e := Entry{
		ID:       NewEntryID(),
		Username: username,
		Score:    score,
		Mode:     mode,
	}
	if _, err := s.db.Exec(
		"INSERT INTO scores (id, username, score, mode) VALUES (?, ?, ?, ?)",
		e.ID, e.Username, e.Score, e.Mode,
	); err != nil {
		return Entry{}, fmt.Errorf("storage: cannot save score: %w", err)
	}

	// Read back the database timestamp
	var createdAt any
	if err := s.db.QueryRow("SELECT created_at FROM scores WHERE id = ?", e.ID).Scan(&createdAt); err != nil {
		return Entry{}, fmt.Errorf("storage: cannot read saved score: %w", err)
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// TopScores retrieves the best limit entries, highest score first. An empty
// mode includes every mode.
func (s *Store) TopScores(mode string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = LeaderboardSize
	}
	return s.queryEntries(
		`SELECT id, username, score, mode, created_at
		 FROM scores
		 WHERE (? = '' OR mode = ?)
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT ?`,
		mode, mode, limit,
	)
}

// AllScores retrieves every entry for mode, highest score first.
func (s *Store) AllScores(mode string) ([]Entry, error) {
	return s.queryEntries(
		`SELECT id, username, score, mode, created_at
		 FROM scores
		 WHERE (? = '' OR mode = ?)
		 ORDER BY score DESC, created_at ASC, rowid ASC`,
		mode, mode,
	)
}

// PlayerScores retrieves the best limit entries of one player.
func (s *Store) PlayerScores(username string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryEntries(
		`SELECT id, username, score, mode, created_at
		 FROM scores
		 WHERE username = ?
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT ?`,
		username, limit,
	)
}

func (s *Store) queryEntries(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Username, &e.Score, &e.Mode, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for mode, or for every mode when mode
// is empty. Returns 0 if no scores exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE (? = '' OR mode = ?)",
		mode, mode,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for mode, or every score when mode is empty.
func (s *Store) ClearScores(mode string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE (? = '' OR mode = ?)", mode, mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// Stats retrieves aggregated statistics for one mode.
func (s *Store) Stats(mode string) (*ModeStats, error) {
	stats := &ModeStats{Mode: mode}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT username), COALESCE(MAX(score), 0),
		        COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores WHERE mode = ?`,
		mode,
	).Scan(&stats.Games, &stats.Players, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllStats retrieves statistics for every mode that has been played.
func (s *Store) AllStats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), COUNT(DISTINCT username), MAX(score), AVG(score), SUM(score), MAX(created_at)
		 FROM scores
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var m ModeStats
		var lastPlayed any
		if err := rows.Scan(&m.Mode, &m.Games, &m.Players, &m.HighScore, &m.AvgScore, &m.TotalScore, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.LastPlayed = parseTime(lastPlayed)
		stats[m.Mode] = &m
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
