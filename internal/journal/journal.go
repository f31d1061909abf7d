// Package journal records host runs in a local sqlite database.
//
// The journal is append-only history for post-mortem inspection; no
// bridge semantics depend on it and a broken journal never fails a test
// run. The database lives under the project's .hostbridge directory by
// default.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	host        TEXT NOT NULL,
	call        TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	output      TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL
);`

// Entry is one recorded host run.
type Entry struct {
	RunID     string
	Host      string
	Call      string
	ExitCode  int
	Passed    bool
	Output    string
	StartedAt time.Time
	Duration  time.Duration
}

// Journal is an open run journal.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends one run.
func (j *Journal) Record(e Entry) error {
	_, err := j.db.Exec(
		`INSERT INTO runs (run_id, host, call, exit_code, passed, output, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Host, e.Call, e.ExitCode, e.Passed, e.Output,
		e.StartedAt.UTC(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", e.RunID, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (j *Journal) List(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT run_id, host, call, exit_code, passed, output, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var passed int
		var durationMS int64
		if err := rows.Scan(&e.RunID, &e.Host, &e.Call, &e.ExitCode, &passed,
			&e.Output, &e.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Passed = passed != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
