// Package runlog keeps a history of generation runs in SQLite so past
// runs can be listed and inspected after the fact.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID            string
	TaskID        string
	ArticlePath   string
	OutputPath    string
	Status        string
	TotalSegments int
	Cached        int
	Generated     int
	Failed        int
	Duration      float64
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Store persists runs to a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL,
    article_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    status TEXT NOT NULL,
    total_segments INTEGER NOT NULL,
    cached INTEGER NOT NULL,
    generated INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    duration_seconds REAL NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open creates or opens the run history database.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	cleaned := filepath.Clean(dbPath)
	db, err := sql.Open("sqlite", cleaned)
	if err != nil {
		return nil, fmt.Errorf("open run history %q: %w", cleaned, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure run history: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize run history schema: %w", err)
	}
	return &Store{db: db, path: cleaned}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record inserts a finished run. A fresh id is assigned when the run has
// none.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (
    id, task_id, article_path, output_path, status,
    total_segments, cached, generated, failed,
    duration_seconds, started_at, finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TaskID, run.ArticlePath, run.OutputPath, run.Status,
		run.TotalSegments, run.Cached, run.Generated, run.Failed,
		run.Duration,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, task_id, article_path, output_path, status,
       total_segments, cached, generated, failed,
       duration_seconds, started_at, finished_at
FROM runs
ORDER BY started_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID, &run.TaskID, &run.ArticlePath, &run.OutputPath, &run.Status,
			&run.TotalSegments, &run.Cached, &run.Generated, &run.Failed,
			&run.Duration, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
