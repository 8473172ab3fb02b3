package engine

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
)

// SeedCreate builds the initial create-form state from declared defaults.
// Multi-select predefined fields are expanded from their comma-joined
// storage form into a value list.
func SeedCreate(cfg *descriptor.PageConfig) map[string]any {
	values := make(map[string]any, len(cfg.CreateDefaults))
	for field, v := range cfg.CreateDefaults {
		values[field] = seedValue(cfg, field, v)
	}
	return values
}

// SeedEdit builds the edit-form state from an existing row, restricted to
// the editable fields.
func SeedEdit(cfg *descriptor.PageConfig, row Row) map[string]any {
	values := make(map[string]any)
	for _, field := range cfg.EditableFields(rowKeys(row)) {
		if v, ok := row[field]; ok {
			values[field] = seedValue(cfg, field, v)
		}
	}
	return values
}

func seedValue(cfg *descriptor.PageConfig, field string, v any) any {
	if spec, ok := cfg.PredefinedFor(field); ok && spec.Selection == descriptor.SelectionMulti {
		if s, isString := v.(string); isString {
			return SplitMulti(s)
		}
	}
	return v
}

// SplitMulti expands a comma-joined multi-select value ("A, B") into its
// member set.
func SplitMulti(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinMulti serializes a multi-select value list back to the comma-joined
// storage form (no spaces).
func JoinMulti(values []string) string {
	return strings.Join(values, ",")
}

// NormalizeFieldInput coerces a typed value for a date-named field to
// YYYY-MM-DD on change; anything unparseable is kept exactly as typed.
func NormalizeFieldInput(field string, raw string) string {
	if !descriptor.IsDateField(field) {
		return raw
	}
	if normalized, ok := NormalizeDate(raw); ok {
		return normalized
	}
	return raw
}

// BuildPayload turns form state into the attribute map and relationship set
// of a JSON:API write. System fields and empty values are stripped; fields
// matching a relationship's display field move into relationships; multi-
// select lists are joined back to comma-separated strings. fields bounds
// which keys of values are considered (the edit allow-list, or all keys for
// create).
func BuildPayload(cfg *descriptor.PageConfig, values map[string]any, fields []string) (map[string]any, map[string]gateway.Relationship) {
	attributes := make(map[string]any)
	relationships := make(map[string]gateway.Relationship)

	for _, field := range fields {
		v, ok := values[field]
		if !ok || descriptor.IsSystemField(field) || isEmptyValue(v) {
			continue
		}

		if spec, isPredefined := cfg.PredefinedFor(field); isPredefined && spec.Selection == descriptor.SelectionMulti {
			attributes[field] = JoinMulti(toStringList(v))
			continue
		}

		if relKey, isRel := cfg.RelationshipKeyFor(field); isRel {
			relationships[relKey] = gateway.Relationship{
				Data: &gateway.ResourceIdentifier{Type: relKey, ID: asString(v)},
			}
			continue
		}

		attributes[field] = v
	}

	return attributes, relationships
}

// FormFields returns the keys of the form state, for the create path where
// no allow-list applies.
func FormFields(values map[string]any) []string {
	out := make([]string, 0, len(values))
	for k := range values {
		out = append(out, k)
	}
	return out
}

func rowKeys(row Row) []string {
	out := make([]string, 0, len(row))
	for k := range row {
		out = append(out, k)
	}
	return out
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, asString(item))
		}
		return out
	case string:
		return SplitMulti(t)
	default:
		return []string{asString(v)}
	}
}

// BlobStatus is the live validation state of a structured-blob field edit.
// Invalid JSON never blocks submission; the raw string is sent as-is.
type BlobStatus struct {
	Valid        bool     `json:"valid"`
	KeyCount     int      `json:"keyCount"`
	SchemaErrors []string `json:"schemaErrors,omitempty"`
}

// CheckBlob parses a blob field edit and, when the page attaches a JSON
// Schema to the field, validates the document against it.
func CheckBlob(cfg *descriptor.PageConfig, field, raw string) BlobStatus {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return BlobStatus{Valid: false}
	}

	status := BlobStatus{Valid: true}
	if obj, ok := parsed.(map[string]any); ok {
		status.KeyCount = len(obj)
	}

	schema, ok := cfg.BlobSchemas[field]
	if !ok {
		return status
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		status.SchemaErrors = []string{err.Error()}
		return status
	}
	for _, issue := range result.Errors() {
		status.SchemaErrors = append(status.SchemaErrors, issue.String())
	}
	return status
}
