package cli

import (
	"io"

	"github.com/runnerr0/jobtracker/internal/storage"
	"github.com/runnerr0/jobtracker/internal/tracker"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the SQLite database file"`
	Backend string `long:"backend" description:"Override the storage backend (sqlite | memory)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// CompanyAddCommand creates a company.
type CompanyAddCommand struct {
	Name     string `long:"name" description:"Company name (required)"`
	Website  string `long:"website" description:"Company website URL"`
	Location string `long:"location" description:"Location"`
	Size     string `long:"size" description:"Headcount or size bracket"`
	Industry string `long:"industry" description:"Industry"`
	Notes    string `long:"notes" description:"Free-form notes"`

	globals *GlobalFlags
}

// CompanyListCommand lists companies with per-status counts.
type CompanyListCommand struct {
	globals *GlobalFlags
}

// CompanyShowCommand prints one company and its applications.
type CompanyShowCommand struct {
	ID string `long:"id" description:"Company ID (required)"`

	globals *GlobalFlags
}

// CompanyUpdateCommand edits company fields. Only flags that are given change.
type CompanyUpdateCommand struct {
	ID       string  `long:"id" description:"Company ID (required)"`
	Name     *string `long:"name" description:"New name"`
	Website  *string `long:"website" description:"New website URL (empty clears)"`
	Location *string `long:"location" description:"New location (empty clears)"`
	Size     *string `long:"size" description:"New size (empty clears)"`
	Industry *string `long:"industry" description:"New industry (empty clears)"`
	Notes    *string `long:"notes" description:"New notes (empty clears)"`

	globals *GlobalFlags
}

// CompanyDeleteCommand removes a company and all of its applications.
type CompanyDeleteCommand struct {
	ID string `long:"id" description:"Company ID (required)"`

	globals *GlobalFlags
}

// AppAddCommand adds an application to a company.
type AppAddCommand struct {
	Company       string `long:"company" description:"Owning company ID (required)"`
	Position      string `long:"position" description:"Position title (required)"`
	Status        string `long:"status" description:"applied | interviewing | offered | rejected | withdrawn" default:"applied"`
	Priority      string `long:"priority" description:"low | medium | high" default:"medium"`
	Date          string `long:"date" description:"Date applied (YYYY-MM-DD, default today)"`
	Notes         string `long:"notes" description:"Free-form notes"`
	Brainstorming string `long:"brainstorming" description:"Brainstorming notes"`
	URL           string `long:"url" description:"Application URL"`
	CoverLetter   string `long:"cover-letter" description:"Cover letter text"`
	Tags          string `long:"tags" description:"Comma-separated tags"`

	globals *GlobalFlags
}

// AppListCommand lists applications across companies.
type AppListCommand struct {
	Company string `long:"company" description:"Only applications of this company ID"`
	Tag     string `long:"tag" description:"Only applications carrying this tag"`
	Status  string `long:"status" description:"Only applications in this status"`

	globals *GlobalFlags
}

// AppUpdateCommand edits application fields. Only flags that are given change.
type AppUpdateCommand struct {
	Company       string  `long:"company" description:"Owning company ID (required)"`
	ID            string  `long:"id" description:"Application ID (required)"`
	Position      *string `long:"position" description:"New position title"`
	Status        *string `long:"status" description:"New status"`
	Priority      *string `long:"priority" description:"New priority"`
	Date          *string `long:"date" description:"New date applied (YYYY-MM-DD)"`
	Notes         *string `long:"notes" description:"New notes"`
	Brainstorming *string `long:"brainstorming" description:"New brainstorming notes"`
	URL           *string `long:"url" description:"New application URL (empty clears)"`
	CoverLetter   *string `long:"cover-letter" description:"New cover letter (empty clears)"`
	Tags          *string `long:"tags" description:"Replacement comma-separated tags (empty clears)"`

	globals *GlobalFlags
}

// AppDeleteCommand removes one application.
type AppDeleteCommand struct {
	Company string `long:"company" description:"Owning company ID (required)"`
	ID      string `long:"id" description:"Application ID (required)"`

	globals *GlobalFlags
}

// StatusCommand shows dashboard totals and storage details.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// CompareCommand prints two applications side by side.
type CompareCommand struct {
	First  string `long:"first" description:"First application as COMPANY_ID:APPLICATION_ID (required)"`
	Second string `long:"second" description:"Second application as COMPANY_ID:APPLICATION_ID (required)"`

	globals *GlobalFlags
}

// ExportCommand writes the stored collection as JSON.
type ExportCommand struct {
	Output string `long:"output" description:"Write to file instead of stdout"`

	globals *GlobalFlags
}

// ImportCommand loads a JSON collection, migrating legacy shapes.
type ImportCommand struct {
	File  string `long:"file" description:"JSON file to import (required)"`
	Merge bool   `long:"merge" description:"Append to existing data instead of replacing it"`

	globals *GlobalFlags
}

// PurgeCommand deletes ALL tracker data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	in      io.Reader // confirmation input; nil means os.Stdin
}

// UndoCommand restores the value stored before the last change.
type UndoCommand struct {
	List bool `long:"list" description:"List the earlier values undo can restore, newest first"`

	globals *GlobalFlags
}

// restorer is implemented by backends that keep replaced values.
type restorer interface {
	Restore(key string) error
	History(key string) ([]storage.HistoryEntry, error)
}

var (
	_ restorer           = (*storage.SQLiteKV)(nil)
	_ tracker.Overwriter = (*storage.SQLiteKV)(nil)
)
