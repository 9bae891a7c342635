package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/jobtracker/internal/storage"
	"github.com/runnerr0/jobtracker/internal/tracker"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestStore returns a store over a fresh in-memory backend.
func newTestStore(t *testing.T) (*tracker.Store, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	return tracker.Open(kv), kv
}

// parseOnly parses args without executing the matched command.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, goflags.Commander, error) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	parser.Options &^= goflags.PrintErrors

	var matched goflags.Commander
	parser.CommandHandler = func(cmd goflags.Commander, args []string) error {
		matched = cmd
		return nil
	}
	_, err := parser.ParseArgs(args)
	return globals, cmds, matched, err
}

// sqliteArgs returns global flags pointing at a throwaway config and database.
func sqliteArgs(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db-path", filepath.Join(dir, "tracker.db"),
		"--backend", "sqlite",
	}
}

func run(t *testing.T, base []string, args ...string) (string, error) {
	t.Helper()
	var err error
	out := captureOutput(t, func() {
		err = RunWithArgs("test", append(append([]string{}, base...), args...))
	})
	return out, err
}

func decodeJSON(t *testing.T, out string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output should be valid JSON: %s", out)
}

func strPtr(s string) *string { return &s }
