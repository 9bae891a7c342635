package storage

import "database/sql"

// migrateV002 adds kv_history, which keeps the values replaced by Set so
// the most recent ones can be restored.
func migrateV002(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			key         TEXT NOT NULL REFERENCES kv_entries(key) ON DELETE CASCADE,
			value       TEXT NOT NULL,
			replaced_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kv_history_key ON kv_history(key, id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
