package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/jobtracker/internal/storage"
	"github.com/runnerr0/jobtracker/internal/tracker"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version        string                 `json:"version"`
	Backend        string                 `json:"backend"`
	DatabasePath   string                 `json:"database_path,omitempty"`
	SizeBytes      int64                  `json:"size_bytes"`
	HistoryEntries int64                  `json:"history_entries"`
	Key            string                 `json:"key"`
	Companies      int                    `json:"companies"`
	Applications   int                    `json:"applications"`
	ByStatus       map[tracker.Status]int `json:"by_status"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	stats, err := sess.backend.Stats()
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	return c.executeWithStore(sess.store, stats)
}

// executeWithStore runs status against a provided store and stats (for testing).
func (c *StatusCommand) executeWithStore(store *tracker.Store, stats *storage.Stats) error {
	sum := store.Summary()

	if jsonOutput(c.globals) {
		return writeJSON(statusJSON{
			Version:        c.version,
			Backend:        stats.Backend,
			DatabasePath:   stats.Path,
			SizeBytes:      stats.SizeBytes,
			HistoryEntries: stats.HistoryEntries,
			Key:            store.Key(),
			Companies:      sum.Companies,
			Applications:   sum.Applications,
			ByStatus:       sum.ByStatus,
		})
	}
	return c.printStatusHuman(store.Key(), sum, stats)
}

func (c *StatusCommand) printStatusHuman(key string, sum tracker.Summary, stats *storage.Stats) error {
	fmt.Println("Job Tracker Status")
	fmt.Println("==================")
	fmt.Printf("Version:       %s\n", c.version)
	if stats.Path != "" {
		fmt.Printf("Storage:       %s %s (%s)\n", stats.Backend, stats.Path, formatBytes(stats.SizeBytes))
	} else {
		fmt.Printf("Storage:       %s (%s)\n", stats.Backend, formatBytes(stats.SizeBytes))
	}
	fmt.Printf("Key:           %s\n", key)
	if stats.Backend == storage.BackendSQLite {
		fmt.Printf("Undo history:  %d\n", stats.HistoryEntries)
	}
	fmt.Printf("Companies:     %d\n", sum.Companies)
	fmt.Printf("Applications:  %d\n", sum.Applications)

	fmt.Println()
	fmt.Println("By Status:")
	for _, st := range tracker.Statuses {
		n := sum.ByStatus[st]
		bar := ""
		if sum.Applications > 0 {
			bar = strings.Repeat("#", n*20/sum.Applications)
		}
		fmt.Printf("  %-14s %4d  %s\n", st, n, bar)
	}
	return nil
}
