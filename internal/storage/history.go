package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cwhuang-tw/studynotes/internal/types"
)

// History records finished transcriptions in a local SQLite database.
type History struct {
	db *sql.DB
}

// NewHistory opens (creating if needed) the history database.
func NewHistory(dbPath string) (*History, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS transcriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		mode TEXT NOT NULL,
		characters INTEGER NOT NULL,
		duration REAL,
		local_path TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &History{db: db}, nil
}

// Save inserts one finished transcription.
func (h *History) Save(rec types.HistoryRecord) error {
	query := `
	INSERT INTO transcriptions (job_id, mode, characters, duration, local_path, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.Exec(query, rec.JobID, rec.Mode, rec.Characters, rec.Duration,
		rec.LocalPath, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("save history record: %w", err)
	}
	return nil
}

// List returns the most recent transcriptions, newest first.
func (h *History) List(limit int) ([]types.HistoryRecord, error) {
	query := `
	SELECT job_id, mode, characters, duration, local_path, created_at
	FROM transcriptions ORDER BY created_at DESC LIMIT ?
	`
	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	records := []types.HistoryRecord{}
	for rows.Next() {
		var rec types.HistoryRecord
		if err := rows.Scan(&rec.JobID, &rec.Mode, &rec.Characters, &rec.Duration,
			&rec.LocalPath, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}
