package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run records one pipeline invocation: what was extracted from where, with
// which model and strategy, and how it ended.
type Run struct {
	ID         uuid.UUID
	SourcePath string
	Model      string
	Strategy   string
	Status     string // "OK" or the failure code
	FieldsJSON string // marshaled Fields on success, empty otherwise
	ErrorText  string // human-readable failure message, empty on success
	CreatedAt  time.Time
}

// StatusOK marks a successful run.
const StatusOK = "OK"

// Store persists runs to a local SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	model       TEXT NOT NULL,
	strategy    TEXT NOT NULL,
	status      TEXT NOT NULL,
	fields_json TEXT NOT NULL DEFAULT '',
	error_text  TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open opens or creates the store at path and ensures the schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run. The ID is assigned here when unset.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_path, model, strategy, status, fields_json, error_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.SourcePath, run.Model, run.Strategy, run.Status,
		run.FieldsJSON, run.ErrorText, run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	s.logger.Debug("history.record.ok", "run_id", run.ID, "status", run.Status)
	return nil
}

// List returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, source_path, model, strategy, status, fields_json, error_text, created_at
	      FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("history.rows_close_error", "error", cerr)
		}
	}()

	var runs []Run
	for rows.Next() {
		var r Run
		var id, created string
		if err := rows.Scan(&id, &r.SourcePath, &r.Model, &r.Strategy, &r.Status, &r.FieldsJSON, &r.ErrorText, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", created, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
