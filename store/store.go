// Package store archives team runs in a local SQLite database. The archive
// is best-effort: the JSONL transcript in the run workspace is the primary
// record, and the database serves the runs listing and later inspection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/autocrew/core"
)

// RunSummary is one row of the runs listing.
type RunSummary struct {
	ID         string
	Task       string
	Status     string
	Reason     string
	Turns      int
	Summary    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store wraps the SQLite connection. Safe for concurrent use; database/sql
// serializes access and the database runs in WAL mode.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	task        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	reason      TEXT NOT NULL DEFAULT '',
	turns       INTEGER NOT NULL DEFAULT 0,
	summary     TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS messages (
	run_id    TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	sender    TEXT NOT NULL,
	recipient TEXT NOT NULL,
	body      TEXT NOT NULL,
	ts        TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Open creates or opens the archive at path, enabling WAL and applying the
// schema. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

// StartRun registers a run as running.
func (s *Store) StartRun(ctx context.Context, runID, task string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, task, status, started_at) VALUES (?, ?, 'running', ?)
		 ON CONFLICT(id) DO UPDATE SET task = excluded.task`,
		runID, task, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archive run start: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal state.
func (s *Store) FinishRun(ctx context.Context, runID, status, reason string, turns int, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, reason = ?, turns = ?, summary = ?, finished_at = ? WHERE id = ?`,
		status, reason, turns, summary, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("archive run finish: %w", err)
	}
	return nil
}

// Recorder returns a core.Recorder that archives one run's board messages.
// The board-assigned message ID doubles as the per-run sequence number.
func (s *Store) Recorder(runID string) core.Recorder {
	return &runRecorder{store: s, runID: runID}
}

type runRecorder struct {
	store *Store
	runID string
}

func (r *runRecorder) Record(msg core.Message) error {
	_, err := r.store.db.Exec(
		`INSERT OR IGNORE INTO messages (run_id, seq, sender, recipient, body, ts) VALUES (?, ?, ?, ?, ?, ?)`,
		r.runID, msg.ID, msg.Sender, msg.Recipient, msg.Body, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("archive message %d: %w", msg.ID, err)
	}
	return nil
}

// ListRuns returns up to limit runs, most recent first. Limit <= 0 returns
// everything.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, task, status, reason, turns, summary, started_at, COALESCE(finished_at, started_at)
	          FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Task, &r.Status, &r.Reason, &r.Turns, &r.Summary, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Messages returns one run's archived board in sequence order.
func (s *Store) Messages(ctx context.Context, runID string) ([]core.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, sender, recipient, body, ts FROM messages WHERE run_id = ? ORDER BY seq`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("load run messages: %w", err)
	}
	defer rows.Close()

	var msgs []core.Message
	for rows.Next() {
		var m core.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Recipient, &m.Body, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
