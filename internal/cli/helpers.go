package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/jobtracker/internal/config"
	"github.com/runnerr0/jobtracker/internal/logging"
	"github.com/runnerr0/jobtracker/internal/storage"
	"github.com/runnerr0/jobtracker/internal/tracker"
)

// dateLayout is the on-disk format of dateApplied.
const dateLayout = "2006-01-02"

// session bundles everything a command needs once config is resolved.
type session struct {
	cfg     *config.Config
	log     *logging.Logger
	backend storage.Backend
	store   *tracker.Store
	dbPath  string
}

// loadConfig resolves the config file, the env overlay, and flag overrides.
func loadConfig(g *GlobalFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if g != nil && g.Config != "" {
		cfg, err = config.LoadOrCreateAt(g.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := config.ApplyEnv(cfg, ".env"); err != nil {
		return nil, err
	}

	if g != nil {
		if g.Backend != "" {
			cfg.Storage.Backend = g.Backend
		}
		if g.Verbose {
			cfg.Logging.Level = "debug"
		}
	}
	return cfg, nil
}

// openSession loads config, opens the configured backend, and loads the store.
func openSession(g *GlobalFlags) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	dbPath := ""
	if g != nil && g.DBPath != "" {
		dbPath = g.DBPath
	} else if dbPath, err = cfg.DBPath(); err != nil {
		return nil, err
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.File)

	backend, err := storage.Open(storage.Options{
		Backend:      cfg.Storage.Backend,
		Path:         dbPath,
		JournalMode:  cfg.Storage.SQLiteJournalMode,
		HistoryDepth: cfg.Storage.HistoryDepth,
	})
	if err != nil {
		log.Sync() //nolint:errcheck
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Debug("storage opened", "backend", cfg.Storage.Backend, "path", dbPath)

	return &session{
		cfg:     cfg,
		log:     log,
		backend: backend,
		store:   openStore(backend, cfg.Storage.Key, log),
		dbPath:  dbPath,
	}, nil
}

func (s *session) Close() {
	s.backend.Close()
	s.log.Sync() //nolint:errcheck
}

func openStore(kv tracker.KV, key string, log *logging.Logger) *tracker.Store {
	if key == "" {
		key = tracker.DefaultKey
	}
	return tracker.Open(kv, tracker.WithKey(key), tracker.WithLogger(log))
}

func jsonOutput(g *GlobalFlags) bool {
	return g != nil && g.JSON
}

// writeJSON pretty-prints v to stdout.
func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseRef splits "COMPANY_ID:APPLICATION_ID".
func parseRef(s string) (companyID, applicationID string, err error) {
	companyID, applicationID, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || companyID == "" || applicationID == "" {
		return "", "", fmt.Errorf("invalid application reference %q (want COMPANY_ID:APPLICATION_ID)", s)
	}
	return companyID, applicationID, nil
}

func validateStatus(s string) (tracker.Status, error) {
	st := tracker.Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (use %s)", s, joinStatuses())
	}
	return st, nil
}

func validatePriority(s string) (tracker.Priority, error) {
	p := tracker.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (use low, medium, or high)", s)
	}
	return p, nil
}

func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return nil
}

// validateURL accepts an empty string or an absolute http(s) URL.
func validateURL(field, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q (want an http or https URL)", field, s)
	}
	return nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}

func joinStatuses() string {
	names := make([]string, len(tracker.Statuses))
	for i, st := range tracker.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// formatDate renders a stored YYYY-MM-DD date in the configured layout.
func formatDate(stored, layout string) string {
	if layout == "" || layout == dateLayout {
		return stored
	}
	t, err := time.Parse(dateLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format(layout)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
