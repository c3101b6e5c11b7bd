package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// History archives generated content locally so the offline path keeps the
// same history feature the remote API offers via /content/history.
type History struct {
	db *sql.DB
}

// HistoryEntry is one archived generation result.
type HistoryEntry struct {
	ID          int64
	ContentType string
	Topic       string
	Result      string
	CreatedAt   time.Time
}

// OpenHistory opens (or creates) the SQLite archive at path.
// Use ":memory:" for tests.
func OpenHistory(path string) (*History, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("store: create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open history database: %w", err)
	}

	h := &History{db: db}
	if err := h.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS content_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_type TEXT NOT NULL,
		topic TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_history_type ON content_history(content_type);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("store: initialize history schema: %w", err)
	}
	return nil
}

// Append records one generation result.
func (h *History) Append(contentType, topic, result string) error {
	_, err := h.db.Exec(
		`INSERT INTO content_history (content_type, topic, result) VALUES (?, ?, ?)`,
		contentType, topic, result,
	)
	if err != nil {
		return fmt.Errorf("store: append history: %w", err)
	}
	return nil
}

// List returns archived entries newest-first. An empty contentType returns
// every type.
func (h *History) List(contentType string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, content_type, topic, result, created_at
		FROM content_history`
	args := []any{}
	if contentType != "" {
		query += ` WHERE content_type = ?`
		args = append(args, contentType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.ContentType, &e.Topic, &e.Result, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the archive.
func (h *History) Close() error {
	return h.db.Close()
}
