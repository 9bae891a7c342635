package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

// applicationJSON is the JSON output structure for an application row.
type applicationJSON struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	tracker.Application
}

func toApplicationJSON(ref tracker.ApplicationRef) applicationJSON {
	return applicationJSON{CompanyID: ref.CompanyID, CompanyName: ref.CompanyName, Application: ref.Application}
}

// Execute implements the go-flags Commander interface for AppAddCommand.
func (c *AppAddCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *AppAddCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("company", c.Company); err != nil {
		return err
	}
	if err := requireFlag("position", c.Position); err != nil {
		return err
	}
	in, err := c.input()
	if err != nil {
		return err
	}

	app, ok := store.AddApplication(c.Company, in)
	if !ok {
		return fmt.Errorf("company %q not found", c.Company)
	}

	if jsonOutput(c.globals) {
		return writeJSON(app)
	}
	fmt.Printf("Added application %s (%s)\n", app.Position, app.ID)
	return nil
}

func (c *AppAddCommand) input() (tracker.ApplicationInput, error) {
	in := tracker.ApplicationInput{
		Position:       c.Position,
		DateApplied:    c.Date,
		Notes:          c.Notes,
		Brainstorming:  c.Brainstorming,
		ApplicationURL: c.URL,
		CoverLetter:    c.CoverLetter,
		Tags:           tracker.ParseTags(c.Tags),
	}

	var err error
	if c.Status != "" {
		if in.Status, err = validateStatus(c.Status); err != nil {
			return in, err
		}
	}
	if c.Priority != "" {
		if in.Priority, err = validatePriority(c.Priority); err != nil {
			return in, err
		}
	}
	if c.Date != "" {
		if err := validateDate(c.Date); err != nil {
			return in, err
		}
	}
	if err := validateURL("url", c.URL); err != nil {
		return in, err
	}
	return in, nil
}

// Execute implements the go-flags Commander interface for AppListCommand.
func (c *AppListCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store, sess.cfg.Display.DateFormat)
}

func (c *AppListCommand) executeWithStore(store *tracker.Store, dateFormat string) error {
	var status tracker.Status
	if c.Status != "" {
		var err error
		if status, err = validateStatus(c.Status); err != nil {
			return err
		}
	}

	var refs []tracker.ApplicationRef
	if c.Tag != "" {
		refs = store.ApplicationsWithTag(c.Tag)
	} else {
		refs = store.Applications()
	}

	filtered := refs[:0]
	for _, ref := range refs {
		if c.Company != "" && ref.CompanyID != c.Company {
			continue
		}
		if status != "" && ref.Application.Status != status {
			continue
		}
		filtered = append(filtered, ref)
	}

	if jsonOutput(c.globals) {
		out := make([]applicationJSON, len(filtered))
		for i, ref := range filtered {
			out[i] = toApplicationJSON(ref)
		}
		return writeJSON(out)
	}

	if len(filtered) == 0 {
		fmt.Println("No applications found.")
		return nil
	}

	fmt.Printf("%-20s  %-24s  %-12s  %-6s  %-10s  %s\n", "COMPANY", "POSITION", "STATUS", "PRIO", "APPLIED", "ID")
	for _, ref := range filtered {
		a := ref.Application
		fmt.Printf("%-20s  %-24s  %-12s  %-6s  %-10s  %s:%s\n",
			truncate(ref.CompanyName, 20), truncate(a.Position, 24), a.Status, a.Priority,
			formatDate(a.DateApplied, dateFormat), ref.CompanyID, a.ID)
	}
	fmt.Printf("\n%d application(s)\n", len(filtered))
	return nil
}

// Execute implements the go-flags Commander interface for AppUpdateCommand.
func (c *AppUpdateCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *AppUpdateCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("company", c.Company); err != nil {
		return err
	}
	if err := requireFlag("id", c.ID); err != nil {
		return err
	}
	u, err := c.update()
	if err != nil {
		return err
	}

	if !store.UpdateApplication(c.Company, c.ID, u) {
		return fmt.Errorf("application %s:%s not found", c.Company, c.ID)
	}

	ref, _ := store.FindApplication(c.Company, c.ID)
	if jsonOutput(c.globals) {
		return writeJSON(toApplicationJSON(ref))
	}
	fmt.Printf("Updated application %s at %s\n", ref.Application.Position, ref.CompanyName)
	return nil
}

func (c *AppUpdateCommand) update() (tracker.ApplicationUpdate, error) {
	u := tracker.ApplicationUpdate{
		Position:       c.Position,
		DateApplied:    c.Date,
		Notes:          c.Notes,
		Brainstorming:  c.Brainstorming,
		ApplicationURL: c.URL,
		CoverLetter:    c.CoverLetter,
	}

	if c.Position != nil && strings.TrimSpace(*c.Position) == "" {
		return u, fmt.Errorf("--position cannot be empty")
	}
	if c.Status != nil {
		st, err := validateStatus(*c.Status)
		if err != nil {
			return u, err
		}
		u.Status = &st
	}
	if c.Priority != nil {
		p, err := validatePriority(*c.Priority)
		if err != nil {
			return u, err
		}
		u.Priority = &p
	}
	if c.Date != nil {
		if err := validateDate(*c.Date); err != nil {
			return u, err
		}
	}
	if c.URL != nil {
		if err := validateURL("url", *c.URL); err != nil {
			return u, err
		}
	}
	if c.Tags != nil {
		u.Tags = tracker.ParseTags(*c.Tags)
	}
	return u, nil
}

// Execute implements the go-flags Commander interface for AppDeleteCommand.
func (c *AppDeleteCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *AppDeleteCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("company", c.Company); err != nil {
		return err
	}
	if err := requireFlag("id", c.ID); err != nil {
		return err
	}
	if !store.DeleteApplication(c.Company, c.ID) {
		return fmt.Errorf("application %s:%s not found", c.Company, c.ID)
	}

	if jsonOutput(c.globals) {
		return writeJSON(map[string]interface{}{"deleted": true, "companyId": c.Company, "id": c.ID})
	}
	fmt.Println("Deleted application", c.ID)
	return nil
}
