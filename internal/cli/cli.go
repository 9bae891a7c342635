package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands keeps the parsed command structs so their flags can be read
// back after parsing.
type commands struct {
	CompanyAdd    *CompanyAddCommand
	CompanyList   *CompanyListCommand
	CompanyShow   *CompanyShowCommand
	CompanyUpdate *CompanyUpdateCommand
	CompanyDelete *CompanyDeleteCommand
	AppAdd        *AppAddCommand
	AppList       *AppListCommand
	AppUpdate     *AppUpdateCommand
	AppDelete     *AppDeleteCommand
	Status        *StatusCommand
	Compare       *CompareCommand
	Export        *ExportCommand
	Import        *ImportCommand
	Purge         *PurgeCommand
	Undo          *UndoCommand
}

// group is a command that only holds subcommands.
type group struct{}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "jobtracker"
	parser.LongDescription = "Track companies and the job applications you send them."

	g := &globals
	cmds := &commands{
		CompanyAdd:    &CompanyAddCommand{globals: g},
		CompanyList:   &CompanyListCommand{globals: g},
		CompanyShow:   &CompanyShowCommand{globals: g},
		CompanyUpdate: &CompanyUpdateCommand{globals: g},
		CompanyDelete: &CompanyDeleteCommand{globals: g},
		AppAdd:        &AppAddCommand{globals: g},
		AppList:       &AppListCommand{globals: g},
		AppUpdate:     &AppUpdateCommand{globals: g},
		AppDelete:     &AppDeleteCommand{globals: g},
		Status:        &StatusCommand{globals: g, version: version},
		Compare:       &CompareCommand{globals: g},
		Export:        &ExportCommand{globals: g},
		Import:        &ImportCommand{globals: g},
		Purge:         &PurgeCommand{globals: g},
		Undo:          &UndoCommand{globals: g},
	}

	company, _ := parser.AddCommand("company", "Manage companies", "Add, list, show, update, and delete companies.", &group{})
	company.AddCommand("add", "Add a company", "Add a company. --name is required.", cmds.CompanyAdd)
	company.AddCommand("list", "List companies", "List companies with application counts per status.", cmds.CompanyList)
	company.AddCommand("show", "Show a company", "Show a company and all of its applications.", cmds.CompanyShow)
	company.AddCommand("update", "Update a company", "Update the given fields of a company.", cmds.CompanyUpdate)
	company.AddCommand("delete", "Delete a company", "Delete a company together with all of its applications.", cmds.CompanyDelete)

	app, _ := parser.AddCommand("app", "Manage applications", "Add, list, update, and delete job applications.", &group{})
	app.AddCommand("add", "Add an application", "Add an application to a company. --company and --position are required.", cmds.AppAdd)
	app.AddCommand("list", "List applications", "List applications, optionally filtered by company, tag, or status.", cmds.AppList)
	app.AddCommand("update", "Update an application", "Update the given fields of an application.", cmds.AppUpdate)
	app.AddCommand("delete", "Delete an application", "Delete one application.", cmds.AppDelete)

	parser.AddCommand("status", "Show dashboard totals", "Show company and application totals, per-status counts, and storage details.", cmds.Status)
	parser.AddCommand("compare", "Compare two applications", "Print two applications side by side, marking fields that differ.", cmds.Compare)
	parser.AddCommand("export", "Export data as JSON", "Write the stored collection as a JSON array.", cmds.Export)
	parser.AddCommand("import", "Import data from JSON", "Import a JSON array of companies. Older layouts are migrated on the way in.", cmds.Import)
	parser.AddCommand("purge", "Delete ALL tracker data", "Delete ALL tracker data. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("undo", "Undo the last change", "Restore the collection as it was before the last change (sqlite backend only). Use --list to see what can be restored.", cmds.Undo)

	return parser, &globals, cmds
}

// Run is the main entry point for the jobtracker CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("jobtracker %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
