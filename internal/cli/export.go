package cli

import (
	"fmt"
	"os"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *ExportCommand) executeWithStore(store *tracker.Store) error {
	companies := store.Snapshot()
	data, err := tracker.EncodePayload(companies)
	if err != nil {
		return fmt.Errorf("encode companies: %w", err)
	}

	if c.Output == "" {
		fmt.Println(data)
		return nil
	}

	if err := os.WriteFile(c.Output, []byte(data+"\n"), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if jsonOutput(c.globals) {
		return writeJSON(map[string]interface{}{"output": c.Output, "companies": len(companies)})
	}
	fmt.Printf("Exported %d companies to %s\n", len(companies), c.Output)
	return nil
}
