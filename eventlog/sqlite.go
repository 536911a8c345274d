package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run traces in a SQLite database. Pass ":memory:"
// for an ephemeral store.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	run_id TEXT NOT NULL,
	seq    INTEGER NOT NULL,
	kind   TEXT NOT NULL,
	data   BLOB,
	at     TEXT NOT NULL,
	rowid_order INTEGER PRIMARY KEY AUTOINCREMENT,
	UNIQUE (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_run ON events (run_id, seq);
`

// NewSQLiteStore opens (and if needed initializes) a store at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open sqlite store: %w", err)
	}
	// The driver multiplexes one connection pool over one file; a single
	// connection avoids SQLITE_BUSY on concurrent appends.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventlog: init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, runID string, expectedSeq int64, events []*Event) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("eventlog: begin append: %w", err)
	}
	defer tx.Rollback()

	tail, err := lastSeqTx(ctx, tx, runID)
	if err != nil {
		return -1, err
	}
	if tail != expectedSeq {
		return tail, ErrConcurrencyConflict
	}

	for _, e := range events {
		tail++
		e.RunID = runID
		e.Seq = tail
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (run_id, seq, kind, data, at) VALUES (?, ?, ?, ?, ?)`,
			runID, e.Seq, e.Kind, []byte(e.Data), e.At.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return -1, fmt.Errorf("eventlog: append event %d: %w", e.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("eventlog: commit append: %w", err)
	}
	return tail, nil
}

func (s *SQLiteStore) Read(ctx context.Context, runID string, fromSeq int64) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seq, kind, data, at FROM events WHERE run_id = ? AND seq >= ? ORDER BY seq`,
		runID, fromSeq)
	if err != nil {
		return nil, fmt.Errorf("eventlog: read run %s: %w", runID, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteStore) LastSeq(ctx context.Context, runID string) (int64, error) {
	var tail sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE run_id = ?`, runID).Scan(&tail)
	if err != nil {
		return -1, fmt.Errorf("eventlog: last seq of run %s: %w", runID, err)
	}
	if !tail.Valid {
		return -1, nil
	}
	return tail.Int64, nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context, filter Filter) ([]*Event, error) {
	query := `SELECT run_id, seq, kind, data, at FROM events`
	var where []string
	var args []any
	if filter.RunID != "" {
		where = append(where, `run_id = ?`)
		args = append(args, filter.RunID)
	}
	if len(filter.Kinds) > 0 {
		in := `kind IN (`
		for i, k := range filter.Kinds {
			if i > 0 {
				in += `, `
			}
			in += `?`
			args = append(args, k)
		}
		where = append(where, in+`)`)
	}
	for i, cond := range where {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY rowid_order`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventlog: read all: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("eventlog: delete run %s: %w", runID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func lastSeqTx(ctx context.Context, tx *sql.Tx, runID string) (int64, error) {
	var tail sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE run_id = ?`, runID).Scan(&tail)
	if err != nil {
		return -1, fmt.Errorf("eventlog: last seq of run %s: %w", runID, err)
	}
	if !tail.Valid {
		return -1, nil
	}
	return tail.Int64, nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var data []byte
		var at string
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Kind, &data, &at); err != nil {
			return nil, fmt.Errorf("eventlog: scan event: %w", err)
		}
		if len(data) > 0 {
			e.Data = data
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("eventlog: parse event timestamp: %w", err)
		}
		e.At = ts
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventlog: iterate events: %w", err)
	}
	return out, nil
}
