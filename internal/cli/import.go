package cli

import (
	"fmt"
	"os"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

// importResult is the JSON output structure for the import command.
type importResult struct {
	Imported   int      `json:"imported"`
	Dropped    int      `json:"dropped_duplicates"`
	Malformed  int      `json:"dropped_malformed"`
	Total      int      `json:"total"`
	Migrations []string `json:"migrations"`
	Merged     bool     `json:"merged"`
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *ImportCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("file", c.File); err != nil {
		return err
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	incoming, res, err := tracker.DecodePayload(string(data), -1)
	if err != nil {
		return fmt.Errorf("import %s: %w", c.File, err)
	}

	next := incoming
	if c.Merge {
		next = append(store.Snapshot(), incoming...)
	}
	dropped := store.Replace(next)

	out := importResult{
		Imported:   len(incoming),
		Dropped:    dropped,
		Malformed:  res.Malformed,
		Total:      len(store.Snapshot()),
		Migrations: res.Applied,
		Merged:     c.Merge,
	}
	if out.Migrations == nil {
		out.Migrations = []string{}
	}

	if jsonOutput(c.globals) {
		return writeJSON(out)
	}
	fmt.Printf("Imported %d companies (%d total)\n", out.Imported, out.Total)
	if dropped > 0 {
		fmt.Printf("Skipped %d record(s) with duplicate or missing ids\n", dropped)
	}
	if res.Malformed > 0 {
		fmt.Printf("Skipped %d malformed record(s)\n", res.Malformed)
	}
	for _, m := range res.Applied {
		fmt.Printf("Applied migration: %s\n", m)
	}
	return nil
}
