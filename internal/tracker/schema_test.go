package tracker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, s string) []rawCompany {
	t.Helper()
	var raw []rawCompany
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func appTags(t *testing.T, c rawCompany, i int) any {
	t.Helper()
	apps, ok := c["applications"].([]any)
	require.True(t, ok)
	return apps[i].(map[string]any)["tags"]
}

const legacyPayload = `[
	{"id":"c1","name":"Acme","createdAt":"2023-01-01T00:00:00.000Z","tags":["a","b"],
	 "applications":[
		{"id":"a1","position":"SWE","status":"applied","priority":"low","dateApplied":"2023-01-02","notes":"","brainstorming":""},
		{"id":"a2","position":"SRE","status":"offered","priority":"high","dateApplied":"2023-01-03","notes":"","brainstorming":"","tags":["x"]}
	 ]},
	{"id":"c2","name":"Globex","createdAt":"2023-02-01T00:00:00.000Z",
	 "applications":[
		{"id":"b1","position":"PM","status":"applied","priority":"medium","dateApplied":"2023-02-02","notes":"","brainstorming":""},
		{"id":"b2","position":"QA","status":"applied","priority":"medium","dateApplied":"2023-02-02","notes":"","brainstorming":"","tags":"oops"}
	 ]}
]`

func TestDetectSchemaVersion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"empty", `[]`, CurrentSchemaVersion},
		{"company tags", `[{"id":"c","tags":["a"],"applications":[]}]`, 0},
		{"company tags not array", `[{"id":"c","tags":null,"applications":[]}]`, 0},
		{"application missing tags", `[{"id":"c","applications":[{"id":"a"}]}]`, 1},
		{"application tags not strings", `[{"id":"c","applications":[{"id":"a","tags":[1]}]}]`, 1},
		{"current", `[{"id":"c","applications":[{"id":"a","tags":["go"]}]}]`, CurrentSchemaVersion},
		{"no applications", `[{"id":"c"}]`, CurrentSchemaVersion},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectSchemaVersion(decodeRaw(t, tc.payload)))
		})
	}
}

func TestHoistCompanyTags_PreservesApplicationTags(t *testing.T) {
	raw := decodeRaw(t, legacyPayload)

	out := hoistCompanyTags(raw)

	_, has := out[0]["tags"]
	assert.False(t, has, "company-level tags removed")
	assert.Equal(t, []any{"a", "b"}, appTags(t, out[0], 0))
	assert.Equal(t, []any{"x"}, appTags(t, out[0], 1))

	// Companies without legacy tags are untouched by this step.
	assert.Nil(t, appTags(t, out[1], 0))
}

func TestHoistCompanyTags_DoesNotModifyInput(t *testing.T) {
	raw := decodeRaw(t, legacyPayload)

	_ = hoistCompanyTags(raw)

	_, has := raw[0]["tags"]
	assert.True(t, has)
	assert.Nil(t, appTags(t, raw[0], 0))
}

func TestHoistCompanyTags_NonArrayCompanyTagsDropped(t *testing.T) {
	raw := decodeRaw(t, `[{"id":"c","tags":"legacy","applications":[{"id":"a"}]}]`)

	out := hoistCompanyTags(raw)

	_, has := out[0]["tags"]
	assert.False(t, has)
	assert.Nil(t, appTags(t, out[0], 0), "non-array company tags are not pushed down")
}

func TestDefaultApplicationTags(t *testing.T) {
	raw := decodeRaw(t, `[{"id":"c","applications":[
		{"id":"a"},
		{"id":"b","tags":"nope"},
		{"id":"d","tags":["go",3,"rust"]},
		{"id":"e","tags":["keep"]}
	]}]`)

	out := defaultApplicationTags(raw)

	assert.Equal(t, []any{}, appTags(t, out[0], 0))
	assert.Equal(t, []any{}, appTags(t, out[0], 1))
	assert.Equal(t, []any{"go", "rust"}, appTags(t, out[0], 2))
	assert.Equal(t, []any{"keep"}, appTags(t, out[0], 3))
}

func TestMigrate_RunsStepsInOrder(t *testing.T) {
	raw := decodeRaw(t, legacyPayload)

	out, res := Migrate(raw, 0)

	assert.Equal(t, []string{"hoist_company_tags", "default_application_tags"}, res.Applied)
	assert.Equal(t, 0, res.From)
	assert.Equal(t, CurrentSchemaVersion, res.To)
	assert.True(t, res.Changed())
	assert.Equal(t, []any{"a", "b"}, appTags(t, out[0], 0))
	assert.Equal(t, []any{}, appTags(t, out[1], 0))
	assert.Equal(t, []any{}, appTags(t, out[1], 1))
}

func TestMigrate_CurrentVersionRunsNothing(t *testing.T) {
	raw := decodeRaw(t, `[{"id":"c","applications":[]}]`)

	out, res := Migrate(raw, CurrentSchemaVersion)

	assert.False(t, res.Changed())
	assert.Equal(t, raw, out)
}

func TestMigrate_Idempotent(t *testing.T) {
	once, _ := Migrate(decodeRaw(t, legacyPayload), 0)
	twice, _ := Migrate(once, 0)

	assert.Equal(t, once, twice)
	assert.Equal(t, CurrentSchemaVersion, DetectSchemaVersion(once))
}

func TestMigrate_LaterApplicationTagsSurviveRerun(t *testing.T) {
	once, _ := Migrate(decodeRaw(t, legacyPayload), 0)
	companies := mustDecode(t, once)

	// User edits tags after the migration; a rerun must keep them.
	companies[0].Applications[0].Tags = []string{"edited"}
	data, err := EncodePayload(companies)
	require.NoError(t, err)

	again, _, err := DecodePayload(data, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"edited"}, again[0].Applications[0].Tags)
}

func mustDecode(t *testing.T, raw []rawCompany) []Company {
	t.Helper()
	buf, err := json.Marshal(raw)
	require.NoError(t, err)
	var out []Company
	require.NoError(t, json.Unmarshal(buf, &out))
	return out
}

func TestDecodePayload_Legacy(t *testing.T) {
	companies, res, err := DecodePayload(legacyPayload, -1)
	require.NoError(t, err)

	assert.Equal(t, 0, res.From)
	require.Len(t, companies, 2)
	assert.Equal(t, []string{"a", "b"}, companies[0].Applications[0].Tags)
	assert.Equal(t, []string{"x"}, companies[0].Applications[1].Tags)
	assert.Equal(t, []string{}, companies[1].Applications[0].Tags)
	assert.Equal(t, []string{}, companies[1].Applications[1].Tags)
}

func TestDecodePayload_StoredVersionLowersStart(t *testing.T) {
	_, res, err := DecodePayload(`[{"id":"c","applications":[{"id":"a","tags":[]}]}]`, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, res.From)
	assert.Equal(t, []string{"default_application_tags"}, res.Applied)
}

func TestDecodePayload_Errors(t *testing.T) {
	for _, payload := range []string{`{not json`, `{"id":"c"}`, `[1,2]`, `[{"name":5}]`} {
		_, _, err := DecodePayload(payload, -1)
		assert.Error(t, err, "payload %s", payload)
	}
}

func TestDecodePayload_Null(t *testing.T) {
	companies, _, err := DecodePayload(`null`, -1)
	require.NoError(t, err)
	assert.Equal(t, []Company{}, companies)
}

func TestDecodePayload_DropsNullEntries(t *testing.T) {
	companies, res, err := DecodePayload(`[null, {"id":"c1","applications":[null, 7, {"id":"a1","tags":[]}]}]`, -1)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Malformed)
	require.Len(t, companies, 1)
	assert.Equal(t, "c1", companies[0].ID)
	require.Len(t, companies[0].Applications, 1)
	assert.Equal(t, "a1", companies[0].Applications[0].ID)
}

func TestDropMalformed_DoesNotModifyInput(t *testing.T) {
	raw := decodeRaw(t, `[{"id":"c1","applications":[null]}]`)

	out, n := dropMalformed(raw)

	assert.Equal(t, 1, n)
	assert.Len(t, raw[0]["applications"], 1)
	assert.Empty(t, out[0]["applications"])
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	companies, _, err := DecodePayload(legacyPayload, -1)
	require.NoError(t, err)

	data, err := EncodePayload(companies)
	require.NoError(t, err)
	again, res, err := DecodePayload(data, CurrentSchemaVersion)
	require.NoError(t, err)

	assert.False(t, res.Changed())
	assert.Equal(t, companies, again)
}

func TestEncodePayload_MatchesStorageFormat(t *testing.T) {
	data, err := EncodePayload([]Company{{
		ID:        "c1",
		Name:      "Acme",
		CreatedAt: "2024-01-01T00:00:00.000Z",
		Applications: []Application{{
			ID:          "a1",
			Position:    "SWE",
			Status:      StatusApplied,
			Priority:    PriorityMedium,
			DateApplied: "2024-01-01",
			Tags:        []string{"React"},
		}},
	}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"id":"c1","name":"Acme","createdAt":"2024-01-01T00:00:00.000Z",
		"applications":[{"id":"a1","position":"SWE","status":"applied","priority":"medium",
			"dateApplied":"2024-01-01","notes":"","brainstorming":"","tags":["React"]}]
	}]`, data)
}

func TestEncodePayload_NilIsEmptyArray(t *testing.T) {
	data, err := EncodePayload(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", data)
}
