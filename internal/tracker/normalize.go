package tracker

import "strings"

// normalizeTags trims every tag and drops the empty ones. The result is
// never nil. Duplicates are kept.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseTags splits comma-separated user input into tags.
func ParseTags(input string) []string {
	if strings.TrimSpace(input) == "" {
		return []string{}
	}
	return normalizeTags(strings.Split(input, ","))
}

func (in CompanyInput) normalized() CompanyInput {
	return CompanyInput{
		Name:     strings.TrimSpace(in.Name),
		Website:  strings.TrimSpace(in.Website),
		Location: strings.TrimSpace(in.Location),
		Size:     strings.TrimSpace(in.Size),
		Industry: strings.TrimSpace(in.Industry),
		Notes:    strings.TrimSpace(in.Notes),
	}
}

// normalized trims strings and fills defaults. today is used when no
// date was given.
func (in ApplicationInput) normalized(today string) ApplicationInput {
	out := ApplicationInput{
		Position:       strings.TrimSpace(in.Position),
		Status:         Status(strings.TrimSpace(string(in.Status))),
		Priority:       Priority(strings.TrimSpace(string(in.Priority))),
		DateApplied:    strings.TrimSpace(in.DateApplied),
		Notes:          strings.TrimSpace(in.Notes),
		Brainstorming:  strings.TrimSpace(in.Brainstorming),
		ApplicationURL: strings.TrimSpace(in.ApplicationURL),
		CoverLetter:    strings.TrimSpace(in.CoverLetter),
		Tags:           normalizeTags(in.Tags),
	}
	if out.Status == "" {
		out.Status = StatusApplied
	}
	if out.Priority == "" {
		out.Priority = PriorityMedium
	}
	if out.DateApplied == "" {
		out.DateApplied = today
	}
	return out
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// apply returns c with the non-nil fields of u merged over it. id,
// createdAt and applications are untouched.
func (u CompanyUpdate) apply(c Company) Company {
	mergeString(&c.Name, u.Name)
	mergeString(&c.Website, u.Website)
	mergeString(&c.Location, u.Location)
	mergeString(&c.Size, u.Size)
	mergeString(&c.Industry, u.Industry)
	mergeString(&c.Notes, u.Notes)
	return c
}

func (u ApplicationUpdate) apply(a Application) Application {
	mergeString(&a.Position, u.Position)
	if u.Status != nil {
		a.Status = Status(strings.TrimSpace(string(*u.Status)))
	}
	if u.Priority != nil {
		a.Priority = Priority(strings.TrimSpace(string(*u.Priority)))
	}
	mergeString(&a.DateApplied, u.DateApplied)
	mergeString(&a.Notes, u.Notes)
	mergeString(&a.Brainstorming, u.Brainstorming)
	mergeString(&a.ApplicationURL, u.ApplicationURL)
	mergeString(&a.CoverLetter, u.CoverLetter)
	if u.Tags != nil {
		a.Tags = normalizeTags(u.Tags)
	} else {
		a.Tags = cloneTags(a.Tags)
	}
	return a
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func cloneApplication(a Application) Application {
	a.Tags = cloneTags(a.Tags)
	return a
}

func cloneCompany(c Company) Company {
	apps := make([]Application, len(c.Applications))
	for i, a := range c.Applications {
		apps[i] = cloneApplication(a)
	}
	c.Applications = apps
	return c
}

func cloneCompanies(companies []Company) []Company {
	out := make([]Company, len(companies))
	for i, c := range companies {
		out[i] = cloneCompany(c)
	}
	return out
}

// dedupe normalizes a loaded or imported collection: nil slices become
// empty, records without an id are dropped, and records with an
// already-seen id are dropped, first one wins. It returns the number of
// records dropped.
func dedupe(companies []Company) ([]Company, int) {
	dropped := 0
	seen := make(map[string]bool, len(companies))
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		if c.ID == "" || seen[c.ID] {
			dropped++
			continue
		}
		seen[c.ID] = true

		appSeen := make(map[string]bool, len(c.Applications))
		apps := make([]Application, 0, len(c.Applications))
		for _, a := range c.Applications {
			if a.ID == "" || appSeen[a.ID] {
				dropped++
				continue
			}
			appSeen[a.ID] = true
			a.Tags = cloneTags(a.Tags)
			apps = append(apps, a)
		}
		c.Applications = apps
		out = append(out, c)
	}
	return out, dropped
}
