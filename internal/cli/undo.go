package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/jobtracker/internal/logging"
	"github.com/runnerr0/jobtracker/internal/storage"
	"github.com/runnerr0/jobtracker/internal/tracker"
)

// undoStep is the JSON output structure for undo --list.
type undoStep struct {
	Step         int       `json:"step"`
	ReplacedAt   time.Time `json:"replaced_at"`
	Readable     bool      `json:"readable"`
	Companies    int       `json:"companies"`
	Applications int       `json:"applications"`
}

// Execute implements the go-flags Commander interface for UndoCommand.
func (c *UndoCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithBackend(sess.backend, sess.store.Key(), sess.log)
}

func (c *UndoCommand) executeWithBackend(backend tracker.KV, key string, log *logging.Logger) error {
	r, ok := backend.(restorer)
	if !ok {
		return fmt.Errorf("undo is only available with the sqlite backend")
	}

	if c.List {
		return c.list(r, key)
	}

	if err := r.Restore(key); err != nil {
		if errors.Is(err, storage.ErrNoHistory) {
			return fmt.Errorf("nothing to undo")
		}
		return fmt.Errorf("undo: %w", err)
	}

	// Reload so the restored value is migrated and reported like any other
	// load. The migrated rewrite does not add an undo step.
	sum := openStore(backend, key, log).Summary()
	log.Info("restored previous value", "key", key, "companies", sum.Companies)

	if jsonOutput(c.globals) {
		return writeJSON(map[string]interface{}{
			"restored":     true,
			"companies":    sum.Companies,
			"applications": sum.Applications,
		})
	}
	fmt.Printf("Restored previous state: %d companies, %d applications\n", sum.Companies, sum.Applications)
	return nil
}

func (c *UndoCommand) list(r restorer, key string) error {
	entries, err := r.History(key)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	steps := make([]undoStep, 0, len(entries))
	for i, e := range entries {
		step := undoStep{Step: i + 1, ReplacedAt: e.ReplacedAt}
		if companies, _, err := tracker.DecodePayload(e.Value, -1); err == nil {
			step.Readable = true
			step.Companies = len(companies)
			for _, co := range companies {
				step.Applications += len(co.Applications)
			}
		}
		steps = append(steps, step)
	}

	if jsonOutput(c.globals) {
		return writeJSON(steps)
	}
	if len(steps) == 0 {
		fmt.Println("Nothing to undo.")
		return nil
	}
	for _, s := range steps {
		if !s.Readable {
			fmt.Printf("%d. %s  (unreadable)\n", s.Step, s.ReplacedAt.Format(time.DateTime))
			continue
		}
		fmt.Printf("%d. %s  %d companies, %d applications\n", s.Step, s.ReplacedAt.Format(time.DateTime), s.Companies, s.Applications)
	}
	return nil
}
