package reviewflow

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/pkallio/reviewflow/internal/journal"
)

// SQLiteJournal bundles a SQLite database with a journal store writing into
// it. Close releases the database handle.
type SQLiteJournal struct {
	db    *sql.DB
	store *journal.SQLiteStore
}

// OpenSQLiteJournal opens (or creates) a SQLite-backed journal at the given
// path. The schema is initialized on open.
//
// Typical usage:
//
//	j, err := reviewflow.OpenSQLiteJournal("file:sessions.db?_journal=WAL")
//	defer j.Close()
//	flow, _ := builder.Build(h, reviewflow.WithJournal(j.Store()))
func OpenSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store, err := journal.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db, store: store}, nil
}

// NewSQLiteJournal wraps an existing database the caller manages; the
// journal schema is initialized on the spot.
func NewSQLiteJournal(db *sql.DB) (Journal, error) {
	return journal.NewSQLiteStore(db)
}

// Store returns the journal store for use with WithJournal.
func (j *SQLiteJournal) Store() Journal { return j.store }

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error { return j.db.Close() }
