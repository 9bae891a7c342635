package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend      string
	Path         string // database file, sqlite only
	JournalMode  string // sqlite journal_mode pragma, empty leaves the default
	HistoryDepth int
}

// Open returns the backend named by opts.Backend. An empty name means sqlite.
func Open(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		return OpenSQLite(opts.Path, opts.JournalMode, opts.HistoryDepth)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// SQLiteDB is a SQLiteKV that owns its database handle.
type SQLiteDB struct {
	*SQLiteKV
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path, applies the
// journal mode, runs migrations, and returns a ready backend.
func OpenSQLite(path, journalMode string, historyDepth int) (*SQLiteDB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend requires a database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps :memory: databases and pragmas consistent.
	db.SetMaxOpenConns(1)

	if journalMode != "" {
		if _, err := db.Exec("PRAGMA journal_mode = " + sanitizePragma(journalMode)); err != nil {
			db.Close()
			return nil, fmt.Errorf("set journal mode: %w", err)
		}
	}

	if err := NewMigrationRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	reportPath := path
	if path == ":memory:" {
		reportPath = ""
	}
	kv, err := NewSQLiteKV(db, reportPath, historyDepth)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDB{SQLiteKV: kv, db: db}, nil
}

// Close releases statements and closes the database.
func (s *SQLiteDB) Close() error {
	s.SQLiteKV.Close()
	return s.db.Close()
}

// sanitizePragma keeps only letters so the value can be spliced into a PRAGMA.
func sanitizePragma(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
