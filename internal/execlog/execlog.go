// ABOUTME: SQLite-backed append-only log of hook executions
// ABOUTME: Entries are capped to the newest N rows on every append

package execlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Status classifies one execution attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
	StatusTimeout Status = "timeout"
)

// Entry is one hook execution attempt.
type Entry struct {
	ID          string     `json:"id"`
	HookID      string     `json:"hookId"`
	ExecutionID string     `json:"executionId"`
	ChainDepth  int        `json:"chainDepth"`
	TriggeredAt time.Time  `json:"triggeredAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DurationMs  int64      `json:"duration,omitempty"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id           TEXT PRIMARY KEY,
	hook_id      TEXT NOT NULL,
	execution_id TEXT NOT NULL,
	chain_depth  INTEGER NOT NULL DEFAULT 0,
	triggered_at INTEGER NOT NULL,
	completed_at INTEGER,
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_executions_hook ON executions(hook_id, triggered_at DESC);
`

// Store is the execution log database. One instance owns the connection.
type Store struct {
	db    *sql.DB
	limit int
}

// Open opens (creating if needed) the log database at path, keeping at most
// limit entries.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = 200
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open execution log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init execution log schema: %w", err)
	}

	return &Store{db: db, limit: limit}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts one entry and prunes everything beyond the cap.
// Timestamps are stored as unix nanoseconds so ordering is numeric;
// textual formats drop trailing zeros and missort within a second.
func (s *Store) Append(e Entry) error {
	var completed any
	if e.CompletedAt != nil {
		completed = e.CompletedAt.UnixNano()
	}

	_, err := s.db.Exec(
		`INSERT INTO executions (id, hook_id, execution_id, chain_depth, triggered_at, completed_at, duration_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.HookID, e.ExecutionID, e.ChainDepth,
		e.TriggeredAt.UnixNano(), completed,
		e.DurationMs, string(e.Status), e.Error,
	)
	if err != nil {
		return fmt.Errorf("append execution log: %w", err)
	}

	return s.Prune(s.limit)
}

// List returns entries newest first, optionally filtered by hook id.
// limit <= 0 means no limit beyond the store cap.
func (s *Store) List(hookID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.limit
	}

	query := `SELECT id, hook_id, execution_id, chain_depth, triggered_at, completed_at, duration_ms, status, error
	          FROM executions`
	args := []any{}
	if hookID != "" {
		query += ` WHERE hook_id = ?`
		args = append(args, hookID)
	}
	query += ` ORDER BY triggered_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			triggered int64
			completed sql.NullInt64
			status    string
		)
		if err := rows.Scan(&e.ID, &e.HookID, &e.ExecutionID, &e.ChainDepth, &triggered, &completed, &e.DurationMs, &status, &e.Error); err != nil {
			return nil, fmt.Errorf("scan execution log row: %w", err)
		}
		e.Status = Status(status)
		e.TriggeredAt = time.Unix(0, triggered).UTC()
		if completed.Valid {
			t := time.Unix(0, completed.Int64).UTC()
			e.CompletedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes everything except the newest max entries.
func (s *Store) Prune(max int) error {
	_, err := s.db.Exec(
		`DELETE FROM executions WHERE id NOT IN (
			SELECT id FROM executions ORDER BY triggered_at DESC LIMIT ?
		)`, max)
	if err != nil {
		return fmt.Errorf("prune execution log: %w", err)
	}
	return nil
}
