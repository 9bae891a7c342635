package tracker

import "strings"

// StatusCounts returns how many of the company's applications are in each
// status. Every known status is present, zero or not.
func (c Company) StatusCounts() map[Status]int {
	counts := emptyStatusCounts()
	for _, a := range c.Applications {
		counts[a.Status]++
	}
	return counts
}

func emptyStatusCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	return counts
}

// Summarize totals companies, applications, and statuses.
func Summarize(companies []Company) Summary {
	sum := Summary{
		Companies: len(companies),
		ByStatus:  emptyStatusCounts(),
	}
	for _, c := range companies {
		sum.Applications += len(c.Applications)
		for _, a := range c.Applications {
			sum.ByStatus[a.Status]++
		}
	}
	return sum
}

// Flatten lists every application with its owning company, in company
// then application order.
func Flatten(companies []Company) []ApplicationRef {
	refs := []ApplicationRef{}
	for _, c := range companies {
		for _, a := range c.Applications {
			refs = append(refs, ApplicationRef{
				CompanyID:   c.ID,
				CompanyName: c.Name,
				Application: cloneApplication(a),
			})
		}
	}
	return refs
}

// HasTag reports whether a carries tag, ignoring case.
func (a Application) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Summary computes dashboard totals for the current state.
func (s *Store) Summary() Summary {
	return Summarize(s.current())
}

// Applications returns every application with its owning company.
func (s *Store) Applications() []ApplicationRef {
	return Flatten(s.current())
}

// FindApplication looks up one application by company and application id.
func (s *Store) FindApplication(companyID, applicationID string) (ApplicationRef, bool) {
	cur := s.current()
	idx := indexCompany(cur, companyID)
	if idx < 0 {
		return ApplicationRef{}, false
	}
	c := cur[idx]
	appIdx := indexApplication(c.Applications, applicationID)
	if appIdx < 0 {
		return ApplicationRef{}, false
	}
	return ApplicationRef{
		CompanyID:   c.ID,
		CompanyName: c.Name,
		Application: cloneApplication(c.Applications[appIdx]),
	}, true
}

// ApplicationsWithTag returns the applications carrying tag, ignoring case.
func (s *Store) ApplicationsWithTag(tag string) []ApplicationRef {
	refs := []ApplicationRef{}
	for _, ref := range Flatten(s.current()) {
		if ref.Application.HasTag(tag) {
			refs = append(refs, ref)
		}
	}
	return refs
}
