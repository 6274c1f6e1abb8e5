// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps a local history of generation runs. Each run is an
// opaque JSON payload with a kind, a subject and a fallback flag, stored in
// SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Kind names what a run produced.
type Kind string

const (
	KindTopics   Kind = "topics"
	KindResearch Kind = "research"
	KindScript   Kind = "script"
	KindSources  Kind = "sources"
)

// Valid reports whether k is a known run kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTopics, KindResearch, KindScript, KindSources:
		return true
	}
	return false
}

// DefaultPath is the archive file used when none is configured.
const DefaultPath = ".script-engine/archive.db"

const defaultListLimit = 50

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when no run matches an ID.
	ErrNotFound = errors.New("run not found")

	// ErrAmbiguous is returned when an ID prefix matches several runs.
	ErrAmbiguous = errors.New("run ID prefix is ambiguous")
)

// Run is one archived generation.
type Run struct {
	ID        string          `json:"id" yaml:"id"`
	Kind      Kind            `json:"kind" yaml:"kind"`
	Subject   string          `json:"subject" yaml:"subject"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	Fallback  bool            `json:"fallback" yaml:"fallback"`
	Payload   json.RawMessage `json:"payload" yaml:"-"`
}

// Decode unmarshals the run payload into v.
func (r Run) Decode(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload of run %s: %w", r.Kind, r.ID, err)
	}
	return nil
}

// Store manages the archive SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive at path, creating parent directories
// and the schema as needed. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	s := &Store{db: db, now: time.Now}
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
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL,
			created_at TEXT NOT NULL,
			fallback INTEGER NOT NULL DEFAULT 0,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save archives payload as a new run and returns it.
func (s *Store) Save(ctx context.Context, kind Kind, subject string, fallback bool, payload any) (Run, error) {
	if !kind.Valid() {
		return Run{}, fmt.Errorf("unknown run kind %q", kind)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Run{}, fmt.Errorf("marshaling payload: %w", err)
	}

	run := Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		CreatedAt: s.now().UTC(),
		Fallback:  fallback,
		Payload:   data,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, subject, created_at, fallback, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Subject, run.CreatedAt.Format(timeLayout), run.Fallback, string(data),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Get returns the run whose ID is id or starts with id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	id = strings.TrimSpace(id)
	prefix := escapeLike(id)
	if prefix == "" {
		return Run{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	runs, err := s.query(ctx,
		`SELECT id, kind, subject, created_at, fallback, payload FROM runs
		 WHERE id = ? OR id LIKE ? ORDER BY rowid LIMIT 2`,
		id, prefix+"%",
	)
	if err != nil {
		return Run{}, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
	}
	switch len(runs) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return runs[0], nil
	}
	return Run{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
}

// ListOptions filters List.
type ListOptions struct {
	// Kind restricts results to one run kind.
	Kind Kind

	// Limit caps the number of runs. Zero uses 50; negative means no limit.
	Limit int
}

// List returns archived runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, kind, subject, created_at, fallback, payload FROM runs WHERE 1=1`)
	if opts.Kind != "" {
		qb.WriteString(` AND kind = ?`)
		args = append(args, string(opts.Kind))
	}
	qb.WriteString(` ORDER BY created_at DESC, rowid DESC`)

	limit := opts.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}
	return s.query(ctx, qb.String(), args...)
}

// Delete removes the run with the exact ID id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			kind    string
			created string
			payload string
		)
		if err := rows.Scan(&r.ID, &kind, &r.Subject, &created, &r.Fallback, &payload); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Kind = Kind(kind)
		r.Payload = json.RawMessage(payload)
		if t, err := time.Parse(timeLayout, created); err == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// escapeLike neutralizes LIKE wildcards. IDs are UUIDs, so only a stray
// '%' or '_' typed by a user needs handling; both are simply dropped.
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
