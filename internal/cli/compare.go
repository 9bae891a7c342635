package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

// Execute implements the go-flags Commander interface for CompareCommand.
func (c *CompareCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store, sess.cfg.Display.DateFormat)
}

func (c *CompareCommand) executeWithStore(store *tracker.Store, dateFormat string) error {
	first, err := c.lookup(store, "first", c.First)
	if err != nil {
		return err
	}
	second, err := c.lookup(store, "second", c.Second)
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return writeJSON([]applicationJSON{toApplicationJSON(first), toApplicationJSON(second)})
	}

	rows := compareRows(first, second, dateFormat)
	for _, r := range rows {
		marker := " "
		if r[1] != r[2] {
			marker = "*"
		}
		fmt.Printf("%s %-14s %-30s %-30s\n", marker, r[0], truncate(r[1], 30), truncate(r[2], 30))
	}
	return nil
}

func (c *CompareCommand) lookup(store *tracker.Store, flag, ref string) (tracker.ApplicationRef, error) {
	if err := requireFlag(flag, ref); err != nil {
		return tracker.ApplicationRef{}, err
	}
	companyID, appID, err := parseRef(ref)
	if err != nil {
		return tracker.ApplicationRef{}, err
	}
	found, ok := store.FindApplication(companyID, appID)
	if !ok {
		return tracker.ApplicationRef{}, fmt.Errorf("application %s not found", ref)
	}
	return found, nil
}

// compareRows lays out label, first value, second value per field.
func compareRows(a, b tracker.ApplicationRef, dateFormat string) [][3]string {
	x, y := a.Application, b.Application
	return [][3]string{
		{"", "FIRST", "SECOND"},
		{"Company", a.CompanyName, b.CompanyName},
		{"Position", x.Position, y.Position},
		{"Status", string(x.Status), string(y.Status)},
		{"Priority", string(x.Priority), string(y.Priority)},
		{"Applied", formatDate(x.DateApplied, dateFormat), formatDate(y.DateApplied, dateFormat)},
		{"Tags", strings.Join(x.Tags, ", "), strings.Join(y.Tags, ", ")},
		{"URL", x.ApplicationURL, y.ApplicationURL},
		{"Notes", x.Notes, y.Notes},
		{"Brainstorming", x.Brainstorming, y.Brainstorming},
		{"Cover letter", x.CoverLetter, y.CoverLetter},
	}
}
