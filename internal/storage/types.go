package storage

import "time"

// Stats holds aggregate statistics about a backend.
type Stats struct {
	Backend        string
	Path           string
	Keys           int64
	PayloadBytes   int64
	HistoryEntries int64
	SizeBytes      int64
}

// HistoryEntry is a value that was overwritten by a later Set.
type HistoryEntry struct {
	ID         int64
	Key        string
	Value      string
	ReplacedAt time.Time
}
