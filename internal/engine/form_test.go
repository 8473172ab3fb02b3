package engine

import (
	"reflect"
	"testing"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
)

func formPage() *descriptor.PageConfig {
	return &descriptor.PageConfig{
		Entity:  "customerBlock",
		Service: "customer-service",
		Fields:  []string{"customerId", "reasons", "startDate", "notes"},
		PredefinedFields: map[string]descriptor.PredefinedField{
			"reasons": {Selection: descriptor.SelectionMulti, Options: []string{"FRAUD", "LEGAL", "DUPLICATE"}},
		},
		RelationshipFields: map[string]string{
			"customer": "customerId",
		},
		CreateDefaults: map[string]any{
			"reasons": "FRAUD, LEGAL",
		},
	}
}

func TestSplitMulti(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A, B", []string{"A", "B"}},
		{"A,B,C", []string{"A", "B", "C"}},
		{"A, , B,", []string{"A", "B"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitMulti(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitMulti(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJoinMulti_NoSpaces(t *testing.T) {
	if got := JoinMulti([]string{"A", "B"}); got != "A,B" {
		t.Errorf("JoinMulti = %q, want A,B", got)
	}
}

func TestMultiRoundTrip(t *testing.T) {
	// The display form uses ", " but the stored form must come back without
	// spaces.
	if got := JoinMulti(SplitMulti("FRAUD, LEGAL")); got != "FRAUD,LEGAL" {
		t.Errorf("round trip = %q, want FRAUD,LEGAL", got)
	}
}

func TestSeedCreate_ExpandsMultiDefaults(t *testing.T) {
	values := SeedCreate(formPage())

	got, ok := values["reasons"].([]string)
	if !ok || !reflect.DeepEqual(got, []string{"FRAUD", "LEGAL"}) {
		t.Errorf("reasons seed = %v", values["reasons"])
	}
}

func TestSeedEdit_RestrictsToEditableFields(t *testing.T) {
	row := Row{
		"id":         "1",
		"customerId": "c-9",
		"reasons":    "FRAUD,LEGAL",
		"notes":      "hello",
		"source":     "import",
	}
	values := SeedEdit(formPage(), row)

	if _, ok := values["id"]; ok {
		t.Error("system field id must not seed the edit form")
	}
	if _, ok := values["source"]; ok {
		t.Error("system field source must not seed the edit form")
	}
	if got, _ := values["reasons"].([]string); !reflect.DeepEqual(got, []string{"FRAUD", "LEGAL"}) {
		t.Errorf("reasons seed = %v", values["reasons"])
	}
	if values["notes"] != "hello" {
		t.Errorf("notes seed = %v", values["notes"])
	}
}

func TestNormalizeFieldInput(t *testing.T) {
	tests := []struct {
		field string
		raw   string
		want  string
	}{
		{"startDate", "2025-03-07T10:30:00Z", "2025-03-07"},
		{"startDate", "2025/3/7", "2025-03-07"},
		{"startDate", "not a date", "not a date"},
		{"notes", "2025-03-07T10:30:00Z", "2025-03-07T10:30:00Z"},
	}
	for _, tt := range tests {
		if got := NormalizeFieldInput(tt.field, tt.raw); got != tt.want {
			t.Errorf("NormalizeFieldInput(%q, %q) = %q, want %q", tt.field, tt.raw, got, tt.want)
		}
	}
}

func TestBuildPayload_SplitsRelationships(t *testing.T) {
	cfg := formPage()
	values := map[string]any{
		"customerId": "c-9",
		"notes":      "hello",
	}

	attrs, rels := BuildPayload(cfg, values, FormFields(values))

	if _, ok := attrs["customerId"]; ok {
		t.Error("relationship display field must not stay in attributes")
	}
	rel, ok := rels["customer"]
	if !ok || rel.Data == nil || rel.Data.Type != "customer" || rel.Data.ID != "c-9" {
		t.Errorf("customer relationship = %+v", rel)
	}
	if attrs["notes"] != "hello" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestBuildPayload_StripsSystemAndEmpty(t *testing.T) {
	cfg := formPage()
	values := map[string]any{
		"id":              "1",
		"createTimestamp": "2025-01-01",
		"notes":           "",
		"reasons":         []string{},
		"startDate":       "2025-03-07",
	}

	attrs, rels := BuildPayload(cfg, values, FormFields(values))

	if len(rels) != 0 {
		t.Errorf("relationships = %v, want none", rels)
	}
	if len(attrs) != 1 || attrs["startDate"] != "2025-03-07" {
		t.Errorf("attributes = %v, want only startDate", attrs)
	}
}

func TestBuildPayload_JoinsMultiSelect(t *testing.T) {
	cfg := formPage()
	values := map[string]any{
		"reasons": []string{"FRAUD", "LEGAL"},
	}

	attrs, _ := BuildPayload(cfg, values, FormFields(values))
	if attrs["reasons"] != "FRAUD,LEGAL" {
		t.Errorf("reasons = %v, want FRAUD,LEGAL", attrs["reasons"])
	}
}

func TestBuildPayload_HonorsFieldBound(t *testing.T) {
	cfg := formPage()
	values := map[string]any{
		"notes":     "kept out",
		"startDate": "2025-03-07",
	}

	attrs, _ := BuildPayload(cfg, values, []string{"startDate"})
	if _, ok := attrs["notes"]; ok {
		t.Error("fields outside the allow-list must be ignored")
	}
}

func TestCheckBlob(t *testing.T) {
	cfg := formPage()

	if status := CheckBlob(cfg, "payloadJson", "{not json"); status.Valid {
		t.Error("malformed JSON must report invalid")
	}

	status := CheckBlob(cfg, "payloadJson", `{"a":1,"b":2}`)
	if !status.Valid || status.KeyCount != 2 {
		t.Errorf("status = %+v, want valid with 2 keys", status)
	}
}

func TestCheckBlob_Schema(t *testing.T) {
	cfg := formPage()
	cfg.BlobSchemas = map[string]string{
		"rulesJson": `{"type":"object","required":["rules"],"properties":{"rules":{"type":"array"}}}`,
	}

	status := CheckBlob(cfg, "rulesJson", `{"rules":[]}`)
	if !status.Valid || len(status.SchemaErrors) != 0 {
		t.Errorf("conforming document = %+v", status)
	}

	status = CheckBlob(cfg, "rulesJson", `{"other":1}`)
	if !status.Valid {
		t.Error("well-formed JSON stays valid even when the schema rejects it")
	}
	if len(status.SchemaErrors) == 0 {
		t.Error("schema violation must surface in SchemaErrors")
	}
}
