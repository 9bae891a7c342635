package tracker

import (
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is the version written alongside every save.
const CurrentSchemaVersion = 2

// rawCompany is a company as decoded from storage, before it is known to
// match the current shape.
type rawCompany = map[string]any

// schemaStep is a single pure payload migration. Apply must not modify
// its input and must be idempotent.
type schemaStep struct {
	Version int
	Name    string
	Apply   func([]rawCompany) []rawCompany
}

// schemaSteps are applied in order to any payload older than their version.
var schemaSteps = []schemaStep{
	{Version: 1, Name: "hoist_company_tags", Apply: hoistCompanyTags},
	{Version: 2, Name: "default_application_tags", Apply: defaultApplicationTags},
}

// MigrationResult describes what Migrate did. Malformed counts the null
// or non-object entries DecodePayload discarded before migrating.
type MigrationResult struct {
	From      int
	To        int
	Applied   []string
	Malformed int
}

// Changed reports whether any step ran.
func (r MigrationResult) Changed() bool {
	return len(r.Applied) > 0
}

// Migrate runs every step newer than from over raw and returns the
// migrated payload. The input is not modified.
func Migrate(raw []rawCompany, from int) ([]rawCompany, MigrationResult) {
	res := MigrationResult{From: from, To: from}
	out := raw
	for _, step := range schemaSteps {
		if step.Version <= from {
			continue
		}
		out = step.Apply(out)
		res.Applied = append(res.Applied, step.Name)
		res.To = step.Version
	}
	if res.To < CurrentSchemaVersion {
		res.To = CurrentSchemaVersion
	}
	return out, res
}

// DetectSchemaVersion infers the version of a payload from its shape:
// company-level tags mean 0, an application without a string-array tags
// field means 1, anything else is current.
func DetectSchemaVersion(raw []rawCompany) int {
	version := CurrentSchemaVersion
	for _, c := range raw {
		if _, ok := c["tags"]; ok {
			return 0
		}
		for _, a := range rawApplications(c) {
			if _, ok := stringArray(a["tags"]); !ok {
				version = 1
			}
		}
	}
	return version
}

// DecodePayload parses a stored value, migrates it from the lower of
// storedVersion and the inferred version, and decodes the result. Pass a
// negative storedVersion when none is known.
func DecodePayload(data string, storedVersion int) ([]Company, MigrationResult, error) {
	var raw []rawCompany
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, MigrationResult{}, fmt.Errorf("parse payload: %w", err)
	}
	raw, malformed := dropMalformed(raw)

	from := DetectSchemaVersion(raw)
	if storedVersion >= 0 && storedVersion < from {
		from = storedVersion
	}

	migrated, res := Migrate(raw, from)
	res.Malformed = malformed

	// Round-trip through JSON to get typed records.
	buf, err := json.Marshal(migrated)
	if err != nil {
		return nil, res, fmt.Errorf("encode migrated payload: %w", err)
	}
	var companies []Company
	if err := json.Unmarshal(buf, &companies); err != nil {
		return nil, res, fmt.Errorf("decode companies: %w", err)
	}
	if companies == nil {
		companies = []Company{}
	}
	return companies, res, nil
}

// dropMalformed removes null companies and application entries that are
// not objects. Companies are copied only when their applications change.
func dropMalformed(raw []rawCompany) ([]rawCompany, int) {
	dropped := 0
	out := make([]rawCompany, 0, len(raw))
	for _, c := range raw {
		if c == nil {
			dropped++
			continue
		}
		apps, ok := c["applications"].([]any)
		if !ok {
			out = append(out, c)
			continue
		}
		kept := make([]any, 0, len(apps))
		for _, item := range apps {
			if _, ok := item.(map[string]any); !ok {
				dropped++
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) != len(apps) {
			c = copyMap(c)
			c["applications"] = kept
		}
		out = append(out, c)
	}
	return out, dropped
}

// EncodePayload serializes companies in the storage format.
func EncodePayload(companies []Company) (string, error) {
	if companies == nil {
		companies = []Company{}
	}
	buf, err := json.Marshal(companies)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// hoistCompanyTags moves legacy company-level tags onto applications that
// have none of their own, then removes the company field.
func hoistCompanyTags(raw []rawCompany) []rawCompany {
	out := make([]rawCompany, len(raw))
	for i, c := range raw {
		legacy, present := c["tags"]
		if !present {
			out[i] = c
			continue
		}

		nc := copyMap(c)
		delete(nc, "tags")

		companyTags, isArray := legacy.([]any)
		if isArray {
			if apps, ok := c["applications"].([]any); ok {
				napps := make([]any, len(apps))
				for j, item := range apps {
					a, ok := item.(map[string]any)
					if !ok {
						napps[j] = item
						continue
					}
					na := copyMap(a)
					if own, ok := a["tags"].([]any); ok {
						na["tags"] = copySlice(own)
					} else {
						na["tags"] = copySlice(companyTags)
					}
					napps[j] = na
				}
				nc["applications"] = napps
			}
		}
		out[i] = nc
	}
	return out
}

// defaultApplicationTags makes every application's tags an array of
// strings.
func defaultApplicationTags(raw []rawCompany) []rawCompany {
	out := make([]rawCompany, len(raw))
	for i, c := range raw {
		apps, ok := c["applications"].([]any)
		if !ok {
			out[i] = c
			continue
		}
		nc := copyMap(c)
		napps := make([]any, len(apps))
		for j, item := range apps {
			a, ok := item.(map[string]any)
			if !ok {
				napps[j] = item
				continue
			}
			na := copyMap(a)
			tags, _ := stringArray(a["tags"])
			na["tags"] = tags
			napps[j] = na
		}
		nc["applications"] = napps
		out[i] = nc
	}
	return out
}

func rawApplications(c rawCompany) []map[string]any {
	apps, _ := c["applications"].([]any)
	out := make([]map[string]any, 0, len(apps))
	for _, item := range apps {
		if a, ok := item.(map[string]any); ok {
			out = append(out, a)
		}
	}
	return out
}

// stringArray returns the string elements of v. ok is false unless v is
// an array made only of strings.
func stringArray(v any) ([]any, bool) {
	arr, isArray := v.([]any)
	out := make([]any, 0, len(arr))
	ok := isArray
	for _, item := range arr {
		s, isString := item.(string)
		if !isString {
			ok = false
			continue
		}
		out = append(out, s)
	}
	return out, ok
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySlice(s []any) []any {
	out := make([]any, len(s))
	copy(out, s)
	return out
}
