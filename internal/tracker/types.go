package tracker

// Status is the lifecycle state of a job application.
type Status string

const (
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffered      Status = "offered"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusApplied,
	StatusInterviewing,
	StatusOffered,
	StatusRejected,
	StatusWithdrawn,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority ranks how much the user cares about an application.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Application is a single job application owned by exactly one Company.
type Application struct {
	ID             string   `json:"id"`
	Position       string   `json:"position"`
	Status         Status   `json:"status"`
	Priority       Priority `json:"priority"`
	DateApplied    string   `json:"dateApplied"`
	Notes          string   `json:"notes"`
	Brainstorming  string   `json:"brainstorming"`
	ApplicationURL string   `json:"applicationUrl,omitempty"`
	CoverLetter    string   `json:"coverLetter,omitempty"`
	Tags           []string `json:"tags"`
}

// Company is an employer record and the owner of its applications.
type Company struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Website      string        `json:"website,omitempty"`
	Location     string        `json:"location,omitempty"`
	Size         string        `json:"size,omitempty"`
	Industry     string        `json:"industry,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	Applications []Application `json:"applications"`
}

// CompanyInput holds the caller-supplied fields of a new company.
type CompanyInput struct {
	Name     string
	Website  string
	Location string
	Size     string
	Industry string
	Notes    string
}

// CompanyUpdate is a partial update. Nil fields are left unchanged; a
// pointer to "" clears an optional field.
type CompanyUpdate struct {
	Name     *string
	Website  *string
	Location *string
	Size     *string
	Industry *string
	Notes    *string
}

// ApplicationInput holds the caller-supplied fields of a new application.
// Tags may be nil.
type ApplicationInput struct {
	Position       string
	Status         Status
	Priority       Priority
	DateApplied    string
	Notes          string
	Brainstorming  string
	ApplicationURL string
	CoverLetter    string
	Tags           []string
}

// ApplicationUpdate is a partial update. Nil fields are left unchanged.
// A nil Tags slice leaves tags unchanged; an empty non-nil slice clears them.
type ApplicationUpdate struct {
	Position       *string
	Status         *Status
	Priority       *Priority
	DateApplied    *string
	Notes          *string
	Brainstorming  *string
	ApplicationURL *string
	CoverLetter    *string
	Tags           []string
}

// ApplicationRef is an application together with its owning company.
type ApplicationRef struct {
	CompanyID   string
	CompanyName string
	Application Application
}

// Summary aggregates counts across the whole collection.
type Summary struct {
	Companies    int
	Applications int
	ByStatus     map[Status]int
}
