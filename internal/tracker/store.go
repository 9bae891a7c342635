// Package tracker holds the canonical collection of companies and their
// job applications, and keeps it persisted in a key-value store.
//
// All mutations replace the whole collection with a freshly built one and
// readers only ever receive deep copies, so a reader never observes a
// half-applied change. Operations that reference an unknown id are no-ops:
// they return false and leave state, storage, and subscribers untouched.
// The store does not validate input beyond trimming and default-filling;
// callers are expected to check required fields themselves.
package tracker

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/jobtracker/internal/logging"
)

// DefaultKey is the storage key holding the serialized collection.
const DefaultKey = "swe-companies-data"

// KV is the durable storage the store persists into.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Overwriter is implemented by KVs that can replace a value without
// recording the old one as an undo step. Load-time rewrites use it when
// available.
type Overwriter interface {
	Overwrite(key, value string) error
}

// Store is the single source of truth for companies and applications.
type Store struct {
	mu        sync.RWMutex
	companies []Company

	kv    KV
	key   string
	log   *logging.Logger
	now   func() time.Time
	newID func() string

	subMu  sync.Mutex
	subs   map[int]func([]Company)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for load and persistence failures.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source for createdAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open creates a Store, loading and migrating whatever kv holds under the
// configured key. Load problems are logged and yield an empty collection.
func Open(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:    kv,
		key:   DefaultKey,
		log:   logging.Nop(),
		now:   time.Now,
		newID: uuid.NewString,
		subs:  make(map[int]func([]Company)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("key", s.key)

	s.companies = s.load()
	return s
}

// SchemaKey is the companion key holding the payload schema version.
func (s *Store) SchemaKey() string {
	return s.key + ":schema"
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) load() []Company {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.log.Error("read stored companies", "error", err)
		return []Company{}
	}
	if !ok {
		return []Company{}
	}

	stored := -1
	if v, ok, err := s.kv.Get(s.SchemaKey()); err == nil && ok {
		if n, err := strconv.Atoi(v); err == nil {
			stored = n
		}
	}

	companies, res, err := DecodePayload(data, stored)
	if err != nil {
		s.log.Error("discarding unreadable stored companies", "error", err)
		return []Company{}
	}

	if res.Malformed > 0 {
		s.log.Warn("dropped malformed records", "count", res.Malformed)
	}

	companies, dropped := dedupe(companies)
	if dropped > 0 {
		s.log.Warn("dropped records with duplicate or missing ids", "count", dropped)
	}

	if res.Changed() || res.Malformed > 0 || dropped > 0 || stored != CurrentSchemaVersion {
		s.log.Info("migrated stored companies", "from", res.From, "to", res.To, "steps", res.Applied)
		write := s.kv.Set
		if o, ok := s.kv.(Overwriter); ok {
			write = o.Overwrite
		}
		s.write(write, companies)
	}
	return companies
}

// persist writes the full collection. Failures are logged, not returned.
func (s *Store) persist(companies []Company) {
	s.write(s.kv.Set, companies)
}

func (s *Store) write(set func(key, value string) error, companies []Company) {
	data, err := EncodePayload(companies)
	if err != nil {
		s.log.Error("encode companies", "error", err)
		return
	}
	if err := set(s.key, data); err != nil {
		s.log.Error("write companies", "error", err)
		return
	}
	if err := set(s.SchemaKey(), strconv.Itoa(CurrentSchemaVersion)); err != nil {
		s.log.Error("write schema version", "error", err)
	}
}

// mutate runs fn against the current collection under the write lock.
// When fn reports a change, its result becomes the new state, is
// persisted, and is delivered to subscribers.
func (s *Store) mutate(fn func(cur []Company) ([]Company, bool)) bool {
	s.mu.Lock()
	next, changed := fn(s.companies)
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.companies = next
	s.persist(next)
	s.mu.Unlock()

	s.notify(next)
	return true
}

func (s *Store) current() []Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.companies
}

// Snapshot returns a deep copy of the current collection.
func (s *Store) Snapshot() []Company {
	return cloneCompanies(s.current())
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function cancels the subscription.
func (s *Store) Subscribe(fn func([]Company)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(companies []Company) {
	s.subMu.Lock()
	fns := make([]func([]Company), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(cloneCompanies(companies))
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}

// AddCompany appends a new company with a fresh id, the current time as
// createdAt, and no applications.
func (s *Store) AddCompany(in CompanyInput) Company {
	in = in.normalized()
	c := Company{
		ID:           s.newID(),
		Name:         in.Name,
		Website:      in.Website,
		Location:     in.Location,
		Size:         in.Size,
		Industry:     in.Industry,
		Notes:        in.Notes,
		CreatedAt:    s.timestamp(),
		Applications: []Application{},
	}

	s.mutate(func(cur []Company) ([]Company, bool) {
		next := make([]Company, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, c), true
	})
	return cloneCompany(c)
}

// UpdateCompany merges the set fields of u into the company with id.
// An unknown id is a no-op and returns false.
func (s *Store) UpdateCompany(id string, u CompanyUpdate) bool {
	return s.mutate(func(cur []Company) ([]Company, bool) {
		idx := indexCompany(cur, id)
		if idx < 0 {
			return nil, false
		}
		next := make([]Company, len(cur))
		copy(next, cur)
		next[idx] = u.apply(cur[idx])
		return next, true
	})
}

// DeleteCompany removes the company with id and all of its applications.
// An unknown id is a no-op and returns false.
func (s *Store) DeleteCompany(id string) bool {
	return s.mutate(func(cur []Company) ([]Company, bool) {
		idx := indexCompany(cur, id)
		if idx < 0 {
			return nil, false
		}
		next := make([]Company, 0, len(cur)-1)
		next = append(next, cur[:idx]...)
		return append(next, cur[idx+1:]...), true
	})
}

// AddApplication appends a new application to the company with
// companyID. An unknown company is a no-op and returns false.
func (s *Store) AddApplication(companyID string, in ApplicationInput) (Application, bool) {
	in = in.normalized(s.today())
	a := Application{
		ID:             s.newID(),
		Position:       in.Position,
		Status:         in.Status,
		Priority:       in.Priority,
		DateApplied:    in.DateApplied,
		Notes:          in.Notes,
		Brainstorming:  in.Brainstorming,
		ApplicationURL: in.ApplicationURL,
		CoverLetter:    in.CoverLetter,
		Tags:           in.Tags,
	}

	ok := s.mutate(func(cur []Company) ([]Company, bool) {
		return withApplications(cur, companyID, func(apps []Application) ([]Application, bool) {
			out := make([]Application, 0, len(apps)+1)
			out = append(out, apps...)
			return append(out, a), true
		})
	})
	if !ok {
		return Application{}, false
	}
	return cloneApplication(a), true
}

// UpdateApplication merges the set fields of u into the matching
// application. Unknown company or application ids are a no-op.
func (s *Store) UpdateApplication(companyID, applicationID string, u ApplicationUpdate) bool {
	return s.mutate(func(cur []Company) ([]Company, bool) {
		return withApplications(cur, companyID, func(apps []Application) ([]Application, bool) {
			idx := indexApplication(apps, applicationID)
			if idx < 0 {
				return nil, false
			}
			out := make([]Application, len(apps))
			copy(out, apps)
			out[idx] = u.apply(apps[idx])
			return out, true
		})
	})
}

// DeleteApplication removes the matching application. Unknown company or
// application ids are a no-op.
func (s *Store) DeleteApplication(companyID, applicationID string) bool {
	return s.mutate(func(cur []Company) ([]Company, bool) {
		return withApplications(cur, companyID, func(apps []Application) ([]Application, bool) {
			idx := indexApplication(apps, applicationID)
			if idx < 0 {
				return nil, false
			}
			out := make([]Application, 0, len(apps)-1)
			out = append(out, apps[:idx]...)
			return append(out, apps[idx+1:]...), true
		})
	})
}

// withApplications builds a new collection in which the company with
// companyID has the application slice produced by fn.
func withApplications(cur []Company, companyID string, fn func([]Application) ([]Application, bool)) ([]Company, bool) {
	idx := indexCompany(cur, companyID)
	if idx < 0 {
		return nil, false
	}
	apps, ok := fn(cur[idx].Applications)
	if !ok {
		return nil, false
	}
	next := make([]Company, len(cur))
	copy(next, cur)
	c := cur[idx]
	c.Applications = apps
	next[idx] = c
	return next, true
}

// Replace swaps in an entirely new collection. Records are normalized and
// those with duplicate or missing ids dropped; the number dropped is
// returned.
func (s *Store) Replace(companies []Company) int {
	next, dropped := dedupe(cloneCompanies(companies))
	if dropped > 0 {
		s.log.Warn("dropped records with duplicate or missing ids", "count", dropped)
	}
	s.mutate(func([]Company) ([]Company, bool) { return next, true })
	return dropped
}

// GetCompanyByID returns a copy of the company with id.
func (s *Store) GetCompanyByID(id string) (Company, bool) {
	cur := s.current()
	idx := indexCompany(cur, id)
	if idx < 0 {
		return Company{}, false
	}
	return cloneCompany(cur[idx]), true
}

func indexCompany(companies []Company, id string) int {
	for i, c := range companies {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func indexApplication(apps []Application, id string) int {
	for i, a := range apps {
		if a.ID == id {
			return i
		}
	}
	return -1
}
