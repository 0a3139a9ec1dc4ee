// Package storage provides SQLite-based persistence for run statistics.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunRecord summarizes one engine session.
type RunRecord struct {
	ID             int64
	SceneKey       string
	Ticks          int64
	DurationSecs   float64
	ResourceCount  int
	FinalDigestHex string
	ContentStatus  string // "cached", "compiled" or "mixed"
	EndReason      string // "quit", "console", "signal"
	CreatedAt      time.Time
}

// RunStats aggregates the stored runs for one scene.
type RunStats struct {
	SceneKey      string
	Runs          int
	TotalTicks    int64
	TotalResource int64
	LongestTicks  int64
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

	// Create parent directories
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
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scene_key TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			duration_secs REAL NOT NULL DEFAULT 0,
			resource_count INTEGER NOT NULL DEFAULT 0,
			final_digest_hex TEXT NOT NULL DEFAULT '',
			content_status TEXT NOT NULL DEFAULT '',
			end_reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scene_key ON runs(scene_key);
		CREATE INDEX IF NOT EXISTS idx_runs_recent ON runs(created_at DESC);
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

// SaveRun records a finished session. Returns the ID of the inserted row.
func (s *Store) SaveRun(record RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (scene_key, ticks, duration_secs, resource_count, final_digest_hex, content_status, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.SceneKey, record.Ticks, record.DurationSecs, record.ResourceCount,
		record.FinalDigestHex, record.ContentStatus, record.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot read inserted id: %w", err)
	}
	return id, nil
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, scene_key, ticks, duration_secs, resource_count, final_digest_hex, content_status, end_reason, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		if err := rows.Scan(&record.ID, &record.SceneKey, &record.Ticks, &record.DurationSecs,
			&record.ResourceCount, &record.FinalDigestHex, &record.ContentStatus,
			&record.EndReason, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SceneStats aggregates all runs for one scene key.
func (s *Store) SceneStats(sceneKey string) (*RunStats, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(ticks), 0), COALESCE(SUM(resource_count), 0), COALESCE(MAX(ticks), 0)
		 FROM runs WHERE scene_key = ?`, sceneKey)
	stats := &RunStats{SceneKey: sceneKey}
	if err := row.Scan(&stats.Runs, &stats.TotalTicks, &stats.TotalResource, &stats.LongestTicks); err != nil {
		return nil, fmt.Errorf("storage: cannot aggregate runs: %w", err)
	}
	return stats, nil
}

// ClearRuns deletes every run for the given scene key.
func (s *Store) ClearRuns(sceneKey string) error {
	if _, err := s.db.Exec("DELETE FROM runs WHERE scene_key = ?", sceneKey); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}
