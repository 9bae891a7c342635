package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

// companyJSON is the JSON output structure for a company listing row.
type companyJSON struct {
	tracker.Company
	StatusCounts map[tracker.Status]int `json:"statusCounts"`
}

func toCompanyJSON(c tracker.Company) companyJSON {
	return companyJSON{Company: c, StatusCounts: c.StatusCounts()}
}

// Execute implements the go-flags Commander interface for CompanyAddCommand.
func (c *CompanyAddCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *CompanyAddCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("name", c.Name); err != nil {
		return err
	}
	if err := validateURL("website", c.Website); err != nil {
		return err
	}

	company := store.AddCompany(tracker.CompanyInput{
		Name:     c.Name,
		Website:  c.Website,
		Location: c.Location,
		Size:     c.Size,
		Industry: c.Industry,
		Notes:    c.Notes,
	})

	if jsonOutput(c.globals) {
		return writeJSON(company)
	}
	fmt.Printf("Added company %s (%s)\n", company.Name, company.ID)
	return nil
}

// Execute implements the go-flags Commander interface for CompanyListCommand.
func (c *CompanyListCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *CompanyListCommand) executeWithStore(store *tracker.Store) error {
	companies := store.Snapshot()

	if jsonOutput(c.globals) {
		out := make([]companyJSON, len(companies))
		for i, co := range companies {
			out[i] = toCompanyJSON(co)
		}
		return writeJSON(out)
	}

	if len(companies) == 0 {
		fmt.Println("No companies yet. Add one with: jobtracker company add --name NAME")
		return nil
	}

	fmt.Printf("%-36s  %-24s  %4s  %s\n", "ID", "NAME", "APPS", "STATUS")
	for _, co := range companies {
		fmt.Printf("%-36s  %-24s  %4d  %s\n", co.ID, truncate(co.Name, 24), len(co.Applications), statusBreakdown(co.StatusCounts()))
	}
	return nil
}

// statusBreakdown renders the non-zero counts, e.g. "applied:2 offered:1".
func statusBreakdown(counts map[tracker.Status]int) string {
	var parts []string
	for _, st := range tracker.Statuses {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", st, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// Execute implements the go-flags Commander interface for CompanyShowCommand.
func (c *CompanyShowCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store, sess.cfg.Display.DateFormat)
}

func (c *CompanyShowCommand) executeWithStore(store *tracker.Store, dateFormat string) error {
	if err := requireFlag("id", c.ID); err != nil {
		return err
	}
	company, ok := store.GetCompanyByID(c.ID)
	if !ok {
		return fmt.Errorf("company %q not found", c.ID)
	}

	if jsonOutput(c.globals) {
		return writeJSON(toCompanyJSON(company))
	}

	fmt.Println(company.Name)
	fmt.Println(strings.Repeat("=", len(company.Name)))
	fmt.Printf("ID:         %s\n", company.ID)
	printOptional("Website:", company.Website)
	printOptional("Location:", company.Location)
	printOptional("Size:", company.Size)
	printOptional("Industry:", company.Industry)
	printOptional("Notes:", company.Notes)
	fmt.Printf("Created:    %s\n", company.CreatedAt)

	fmt.Println()
	if len(company.Applications) == 0 {
		fmt.Println("No applications.")
		return nil
	}
	fmt.Printf("Applications (%d):\n", len(company.Applications))
	for _, a := range company.Applications {
		fmt.Printf("  %-36s  %-24s  %-12s  %-6s  %s", a.ID, truncate(a.Position, 24), a.Status, a.Priority, formatDate(a.DateApplied, dateFormat))
		if len(a.Tags) > 0 {
			fmt.Printf("  [%s]", strings.Join(a.Tags, ", "))
		}
		fmt.Println()
	}
	return nil
}

func printOptional(label, value string) {
	if value != "" {
		fmt.Printf("%-11s %s\n", label, value)
	}
}

// Execute implements the go-flags Commander interface for CompanyUpdateCommand.
func (c *CompanyUpdateCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *CompanyUpdateCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("id", c.ID); err != nil {
		return err
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return fmt.Errorf("--name cannot be empty")
	}
	if c.Website != nil {
		if err := validateURL("website", *c.Website); err != nil {
			return err
		}
	}

	ok := store.UpdateCompany(c.ID, tracker.CompanyUpdate{
		Name:     c.Name,
		Website:  c.Website,
		Location: c.Location,
		Size:     c.Size,
		Industry: c.Industry,
		Notes:    c.Notes,
	})
	if !ok {
		return fmt.Errorf("company %q not found", c.ID)
	}

	company, _ := store.GetCompanyByID(c.ID)
	if jsonOutput(c.globals) {
		return writeJSON(company)
	}
	fmt.Printf("Updated company %s (%s)\n", company.Name, company.ID)
	return nil
}

// Execute implements the go-flags Commander interface for CompanyDeleteCommand.
func (c *CompanyDeleteCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWithStore(sess.store)
}

func (c *CompanyDeleteCommand) executeWithStore(store *tracker.Store) error {
	if err := requireFlag("id", c.ID); err != nil {
		return err
	}
	company, _ := store.GetCompanyByID(c.ID)
	if !store.DeleteCompany(c.ID) {
		return fmt.Errorf("company %q not found", c.ID)
	}

	if jsonOutput(c.globals) {
		return writeJSON(map[string]interface{}{
			"deleted":      true,
			"id":           company.ID,
			"applications": len(company.Applications),
		})
	}
	fmt.Printf("Deleted company %s and %d application(s)\n", company.Name, len(company.Applications))
	return nil
}
