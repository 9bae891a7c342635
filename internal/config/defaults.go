package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:           "sqlite",
			Path:              "~/.config/jobtracker",
			SQLiteFile:        "jobtracker.db",
			SQLiteJournalMode: "wal",
			Key:               "swe-companies-data",
			HistoryDepth:      10,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Display: DisplayConfig{
			DateFormat: "2006-01-02",
		},
	}
}
