package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/jobtracker/internal/tracker"
)

func seedCLIStore(t *testing.T) (*tracker.Store, tracker.Company, tracker.Company) {
	t.Helper()
	store, _ := newTestStore(t)
	acme := store.AddCompany(tracker.CompanyInput{Name: "Acme"})
	globex := store.AddCompany(tracker.CompanyInput{Name: "Globex"})
	store.AddApplication(acme.ID, tracker.ApplicationInput{Position: "SWE", Status: tracker.StatusApplied, Tags: []string{"go"}})
	store.AddApplication(acme.ID, tracker.ApplicationInput{Position: "SRE", Status: tracker.StatusInterviewing})
	store.AddApplication(globex.ID, tracker.ApplicationInput{Position: "PM", Status: tracker.StatusApplied, Tags: []string{"Go"}})
	acme, _ = store.GetCompanyByID(acme.ID)
	globex, _ = store.GetCompanyByID(globex.ID)
	return store, acme, globex
}

func TestAppAdd_Success(t *testing.T) {
	store, _ := newTestStore(t)
	c := store.AddCompany(tracker.CompanyInput{Name: "Acme"})

	cmd := &AppAddCommand{
		Company:  c.ID,
		Position: "Backend Engineer",
		Status:   "Interviewing",
		Priority: "HIGH",
		Date:     "2024-04-01",
		URL:      "https://jobs.acme.test/1",
		Tags:     "go, ,k8s",
		globals:  &GlobalFlags{JSON: true},
	}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store))
	})

	var app tracker.Application
	decodeJSON(t, output, &app)
	assert.Equal(t, tracker.StatusInterviewing, app.Status)
	assert.Equal(t, tracker.PriorityHigh, app.Priority)
	assert.Equal(t, []string{"go", "k8s"}, app.Tags)
	assert.Equal(t, "2024-04-01", app.DateApplied)

	got, _ := store.GetCompanyByID(c.ID)
	assert.Len(t, got.Applications, 1)
}

func TestAppAdd_Validation(t *testing.T) {
	store, _ := newTestStore(t)
	c := store.AddCompany(tracker.CompanyInput{Name: "Acme"})

	tests := []struct {
		name string
		cmd  AppAddCommand
		want string
	}{
		{"missing company", AppAddCommand{Position: "SWE"}, "--company is required"},
		{"missing position", AppAddCommand{Company: c.ID}, "--position is required"},
		{"bad status", AppAddCommand{Company: c.ID, Position: "SWE", Status: "ghosted"}, "invalid status"},
		{"bad priority", AppAddCommand{Company: c.ID, Position: "SWE", Priority: "urgent"}, "invalid priority"},
		{"bad date", AppAddCommand{Company: c.ID, Position: "SWE", Date: "01/02/2024"}, "invalid date"},
		{"bad url", AppAddCommand{Company: c.ID, Position: "SWE", URL: "not a url"}, "invalid url"},
		{"unknown company", AppAddCommand{Company: "ghost", Position: "SWE"}, "not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := tc.cmd
			cmd.globals = &GlobalFlags{}
			err := cmd.executeWithStore(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	got, _ := store.GetCompanyByID(c.ID)
	assert.Empty(t, got.Applications)
}

func TestAppList_Filters(t *testing.T) {
	store, acme, _ := seedCLIStore(t)

	list := func(cmd AppListCommand) []applicationJSON {
		cmd.globals = &GlobalFlags{JSON: true}
		var out []applicationJSON
		output := captureOutput(t, func() {
			require.NoError(t, cmd.executeWithStore(store, ""))
		})
		decodeJSON(t, output, &out)
		return out
	}

	assert.Len(t, list(AppListCommand{}), 3)
	assert.Len(t, list(AppListCommand{Company: acme.ID}), 2)
	assert.Len(t, list(AppListCommand{Tag: "go"}), 2)
	assert.Len(t, list(AppListCommand{Status: "applied"}), 2)

	both := list(AppListCommand{Company: acme.ID, Tag: "GO", Status: "applied"})
	require.Len(t, both, 1)
	assert.Equal(t, "SWE", both[0].Position)
	assert.Equal(t, acme.ID, both[0].CompanyID)

	err := (&AppListCommand{Status: "nope", globals: &GlobalFlags{}}).executeWithStore(store, "")
	assert.ErrorContains(t, err, "invalid status")
}

func TestAppList_Human(t *testing.T) {
	store, acme, _ := seedCLIStore(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&AppListCommand{globals: &GlobalFlags{}}).executeWithStore(store, ""))
	})
	assert.Contains(t, output, "3 application(s)")
	assert.Contains(t, output, acme.ID+":"+acme.Applications[0].ID)

	output = captureOutput(t, func() {
		require.NoError(t, (&AppListCommand{Tag: "rust", globals: &GlobalFlags{}}).executeWithStore(store, ""))
	})
	assert.Contains(t, output, "No applications found.")
}

func TestAppUpdate_PartialAndTags(t *testing.T) {
	store, acme, _ := seedCLIStore(t)
	swe := acme.Applications[0]

	cmd := &AppUpdateCommand{
		Company: acme.ID,
		ID:      swe.ID,
		Status:  strPtr("offered"),
		Tags:    strPtr(""),
		globals: &GlobalFlags{},
	}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store))
	})

	ref, ok := store.FindApplication(acme.ID, swe.ID)
	require.True(t, ok)
	assert.Equal(t, tracker.StatusOffered, ref.Application.Status)
	assert.Equal(t, []string{}, ref.Application.Tags, "empty --tags clears")
	assert.Equal(t, "SWE", ref.Application.Position)
	assert.Equal(t, swe.Priority, ref.Application.Priority)
}

func TestAppUpdate_KeepsTagsWhenFlagAbsent(t *testing.T) {
	store, acme, _ := seedCLIStore(t)
	swe := acme.Applications[0]

	cmd := &AppUpdateCommand{Company: acme.ID, ID: swe.ID, Notes: strPtr("called back"), globals: &GlobalFlags{}}
	captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store))
	})

	ref, _ := store.FindApplication(acme.ID, swe.ID)
	assert.Equal(t, []string{"go"}, ref.Application.Tags)
	assert.Equal(t, "called back", ref.Application.Notes)
}

func TestAppUpdate_Errors(t *testing.T) {
	store, acme, globex := seedCLIStore(t)
	swe := acme.Applications[0]

	tests := []struct {
		name string
		cmd  AppUpdateCommand
		want string
	}{
		{"missing id", AppUpdateCommand{Company: acme.ID}, "--id is required"},
		{"empty position", AppUpdateCommand{Company: acme.ID, ID: swe.ID, Position: strPtr("")}, "--position cannot be empty"},
		{"bad status", AppUpdateCommand{Company: acme.ID, ID: swe.ID, Status: strPtr("x")}, "invalid status"},
		{"bad priority", AppUpdateCommand{Company: acme.ID, ID: swe.ID, Priority: strPtr("x")}, "invalid priority"},
		{"bad date", AppUpdateCommand{Company: acme.ID, ID: swe.ID, Date: strPtr("2024-13-01")}, "invalid date"},
		{"wrong company", AppUpdateCommand{Company: globex.ID, ID: swe.ID, Notes: strPtr("x")}, "not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := tc.cmd
			cmd.globals = &GlobalFlags{}
			assert.ErrorContains(t, cmd.executeWithStore(store), tc.want)
		})
	}
}

func TestAppDelete(t *testing.T) {
	store, acme, _ := seedCLIStore(t)
	sre := acme.Applications[1]

	output := captureOutput(t, func() {
		require.NoError(t, (&AppDeleteCommand{Company: acme.ID, ID: sre.ID, globals: &GlobalFlags{JSON: true}}).executeWithStore(store))
	})
	var result map[string]interface{}
	decodeJSON(t, output, &result)
	assert.Equal(t, true, result["deleted"])

	_, ok := store.FindApplication(acme.ID, sre.ID)
	assert.False(t, ok)
	assert.Len(t, store.Applications(), 2)

	err := (&AppDeleteCommand{Company: acme.ID, ID: sre.ID, globals: &GlobalFlags{}}).executeWithStore(store)
	assert.ErrorContains(t, err, "not found")
}
