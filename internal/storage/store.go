// Package storage provides the durable key-value backends the tracker
// persists into.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoHistory is returned by Restore when there is no earlier value.
var ErrNoHistory = errors.New("no earlier value recorded")

// Backend is a durable string key-value store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	PurgeAll() error
	Stats() (*Stats, error)
	Close() error
}

// DefaultHistoryDepth is how many replaced values are kept per key.
const DefaultHistoryDepth = 10

// SQLiteKV implements Backend backed by a SQLite database.
type SQLiteKV struct {
	db           *sql.DB
	path         string
	historyDepth int

	// Prepared statements
	getEntry    *sql.Stmt
	upsertEntry *sql.Stmt
	deleteEntry *sql.Stmt
}

// NewSQLiteKV creates a SQLiteKV from an already-opened and migrated
// database. path is only used for reporting; pass "" for in-memory
// databases. A historyDepth of 0 disables history.
func NewSQLiteKV(db *sql.DB, path string, historyDepth int) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db, path: path, historyDepth: historyDepth}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteKV) prepareStatements() error {
	var err error

	s.getEntry, err = s.db.Prepare(`SELECT value FROM kv_entries WHERE key = ?`)
	if err != nil {
		return err
	}

	s.upsertEntry, err = s.db.Prepare(`
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	s.deleteEntry, err = s.db.Prepare(`DELETE FROM kv_entries WHERE key = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.getEntry.QueryRow(key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites the value under key. The previous value, if any and if
// different, is appended to the key's history.
func (s *SQLiteKV) Set(key, value string) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if s.historyDepth > 0 {
		var prev string
		err := tx.StmtContext(ctx, s.getEntry).QueryRowContext(ctx, key).Scan(&prev)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return fmt.Errorf("read previous value: %w", err)
		case prev != value:
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO kv_history (key, value) VALUES (?, ?)", key, prev,
			); err != nil {
				return fmt.Errorf("record history: %w", err)
			}
		}
	}

	if _, err := tx.StmtContext(ctx, s.upsertEntry).ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if s.historyDepth > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM kv_history WHERE key = ? AND id NOT IN (
				SELECT id FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?
			)`, key, key, s.historyDepth,
		); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	return tx.Commit()
}

// Overwrite replaces the value under key without recording the previous
// value in history. It is meant for rewrites of an equivalent value, such
// as a schema upgrade of a restored entry.
func (s *SQLiteKV) Overwrite(key, value string) error {
	if _, err := s.upsertEntry.Exec(key, value); err != nil {
		return fmt.Errorf("overwrite %s: %w", key, err)
	}
	return nil
}

// Delete removes key and its history. Deleting a missing key is not an error.
func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.deleteEntry.Exec(key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// History returns the replaced values of key, newest first.
func (s *SQLiteKV) History(key string) ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		"SELECT id, key, value, replaced_at FROM kv_history WHERE key = ? ORDER BY id DESC", key,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.Key, &e.Value, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.ReplacedAt, _ = parseTimestamp(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Restore puts the most recent replaced value of key back in place and
// drops it from history. It returns ErrNoHistory when there is none.
func (s *SQLiteKV) Restore(key string) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	var value string
	err = tx.QueryRowContext(ctx,
		"SELECT id, value FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT 1", key,
	).Scan(&id, &value)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNoHistory
		}
		return fmt.Errorf("read history: %w", err)
	}

	if _, err := tx.StmtContext(ctx, s.upsertEntry).ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("restore %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_history WHERE id = ?", id); err != nil {
		return fmt.Errorf("drop restored history entry: %w", err)
	}

	return tx.Commit()
}

// PurgeAll deletes every entry and all history.
func (s *SQLiteKV) PurgeAll() error {
	stmts := []string{
		"DELETE FROM kv_history",
		"DELETE FROM kv_entries",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// Stats returns entry counts and database size.
func (s *SQLiteKV) Stats() (*Stats, error) {
	stats := &Stats{Backend: "sqlite", Path: s.path}

	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM kv_entries",
	).Scan(&stats.Keys, &stats.PayloadBytes)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}

	err = s.db.QueryRow("SELECT COUNT(*) FROM kv_history").Scan(&stats.HistoryEntries)
	if err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	stats.SizeBytes = s.databaseSize()
	return stats, nil
}

// databaseSize returns the database file size in bytes. For in-memory
// databases it falls back to page_count * page_size.
func (s *SQLiteKV) databaseSize() int64 {
	if s.path != "" {
		if info, err := os.Stat(s.path); err == nil {
			return info.Size()
		}
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteKV) Close() error {
	stmts := []*sql.Stmt{s.getEntry, s.upsertEntry, s.deleteEntry}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
