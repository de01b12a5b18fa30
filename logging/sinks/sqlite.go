package sinks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ricochet/server/logging"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tick INTEGER NOT NULL,
	time TEXT NOT NULL,
	type TEXT NOT NULL,
	severity INTEGER NOT NULL,
	category TEXT,
	actor_kind TEXT,
	actor_id TEXT,
	payload TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
`

// SQLiteSink persists events into a local database so match history survives
// restarts. Writes happen on the router's sink worker, never on the
// simulation loop.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewSQLiteSink opens (or creates) the database at path and prepares the
// events table.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink requires a database path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	if _, err := db.Exec(createEventsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	insert, err := db.Prepare(`INSERT INTO events (tick, time, type, severity, category, actor_kind, actor_id, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare event insert: %w", err)
	}
	return &SQLiteSink{db: db, insert: insert}, nil
}

// Write satisfies logging.Sink. Payloads are stored as JSON text; rows that
// fail to encode still land with an empty payload rather than dropping the
// event.
func (s *SQLiteSink) Write(event logging.Event) error {
	var payload []byte
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			payload = data
		}
	}
	_, err := s.insert.Exec(
		int64(event.Tick),
		event.Time.Format(time.RFC3339Nano),
		string(event.Type),
		int(event.Severity),
		event.Category,
		string(event.Actor.Kind),
		event.Actor.ID,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", event.Type, err)
	}
	return nil
}

// EventCount returns the number of persisted rows. Diagnostics and tests use
// it; the hot path never reads.
func (s *SQLiteSink) EventCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLiteSink) Close(context.Context) error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
