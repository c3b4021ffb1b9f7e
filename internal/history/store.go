// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of batch runs and the outcome of
// every RAW file they touched, so past runs can be audited after the
// per-folder logs have been moved or deleted.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dng-batch/pkg/types"
)

const defaultLimit = 50

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Run describes one invocation of the batch command.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	ListFile   string    `json:"list_file" yaml:"list_file"`
	Converter  string    `json:"converter" yaml:"converter"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Record is a stored FileOutcome with the run and folder it belongs to.
type Record struct {
	types.FileOutcome
	RunID  string `json:"run_id" yaml:"run_id"`
	Folder string `json:"folder" yaml:"folder"`
}

// Filter narrows Recent. Zero values match everything.
type Filter struct {
	RunID  string
	Folder string
	Action types.Action
	Limit  int
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			list_file TEXT,
			converter TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			folder TEXT NOT NULL,
			source TEXT NOT NULL,
			output TEXT,
			action TEXT NOT NULL,
			renamed INTEGER NOT NULL DEFAULT 0,
			detail TEXT,
			bytes INTEGER,
			duration_ms INTEGER,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_folder ON outcomes(folder)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a run row. It must precede Record for the same run.
func (s *Store) BeginRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, list_file, converter, started_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.ListFile, r.Converter, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	return nil
}

// Record appends one file outcome to the ledger.
func (s *Store) Record(ctx context.Context, runID, folder string, o types.FileOutcome) error {
	renamed := 0
	if o.Renamed {
		renamed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, folder, source, output, action, renamed, detail, bytes, duration_ms, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, folder, o.Source, o.Output, string(o.Action), renamed, o.Detail,
		o.Bytes, o.Duration.Milliseconds(), o.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", o.Source, err)
	}
	return nil
}

// Recent returns outcomes matching f, newest first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT run_id, folder, source, output, action, renamed, detail, bytes, duration_ms, at
		FROM outcomes WHERE 1=1`)

	if f.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, f.RunID)
	}
	if f.Folder != "" {
		qb.WriteString(` AND folder = ?`)
		args = append(args, f.Folder)
	}
	if f.Action != "" {
		qb.WriteString(` AND action = ?`)
		args = append(args, string(f.Action))
	}
	qb.WriteString(` ORDER BY rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r          Record
			output     sql.NullString
			detail     sql.NullString
			action     string
			renamed    int
			durationMS int64
			at         string
		)
		if err := rows.Scan(&r.RunID, &r.Folder, &r.Source, &output, &action,
			&renamed, &detail, &r.Bytes, &durationMS, &at); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Output = output.String
		r.Detail = detail.String
		r.Action = types.Action(action)
		r.Renamed = renamed != 0
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, list_file, converter, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                   Run
			listFile, converter sql.NullString
			started             string
			finished            sql.NullString
		)
		if err := rows.Scan(&r.ID, &listFile, &converter, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.ListFile = listFile.String
		r.Converter = converter.String
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
