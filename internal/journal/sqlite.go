package journal

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkallio/reviewflow/pkg/api"
)

// SQLiteStore persists session events in SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			flow TEXT NOT NULL DEFAULT '',
			step TEXT NOT NULL DEFAULT '',
			attempt INTEGER NOT NULL DEFAULT 0,
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_session_events_run_id ON session_events(run_id, id);
	`)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, ev api.SessionEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_events (run_id, at, type, flow, step, attempt, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		at.UnixNano(),
		string(ev.Type),
		ev.Flow,
		ev.Step,
		ev.Attempt,
		ev.Detail,
	)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, runID string) ([]api.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, at, type, flow, step, attempt, detail
		FROM session_events
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.SessionEvent
	for rows.Next() {
		var (
			runID   string
			atN     int64
			typ     string
			flow    string
			step    string
			attempt int
			detail  string
		)
		if err := rows.Scan(&runID, &atN, &typ, &flow, &step, &attempt, &detail); err != nil {
			return nil, err
		}
		out = append(out, api.SessionEvent{
			RunID:   runID,
			At:      time.Unix(0, atN),
			Type:    api.EventType(typ),
			Flow:    flow,
			Step:    step,
			Attempt: attempt,
			Detail:  detail,
		})
	}
	return out, rows.Err()
}
