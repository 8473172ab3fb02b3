package descriptor

import "strings"

// Kind is the semantic kind the renderer and form engine dispatch on.
type Kind string

const (
	KindPlain        Kind = "plain"
	KindDate         Kind = "date"
	KindBlob         Kind = "blob"
	KindDeleted      Kind = "deleted"
	KindRelationship Kind = "relationship"
	KindPredefined   Kind = "predefined"
)

// blobHints mark a field as a structured blob by name.
var blobHints = []string{"json", "data", "config", "metadata", "settings"}

// Classify maps a field name to its semantic kind for display purposes.
// This is the single named policy behind all per-field dispatch; precedence
// mirrors the column formatting rules: relationship display field, the
// literal "deleted" flag, structured blob, date, plain.
func (p *PageConfig) Classify(field string) Kind {
	if _, ok := p.RelationshipKeyFor(field); ok {
		return KindRelationship
	}
	if field == "deleted" {
		return KindDeleted
	}
	if IsBlobField(field) {
		return KindBlob
	}
	if IsDateField(field) {
		return KindDate
	}
	return KindPlain
}

// InputKind resolves the edit-form input for a field. Predefined-choice wins
// over relationship, then date, blob and plain; the "deleted" flag is not an
// input, it is toggled from the table.
func (p *PageConfig) InputKind(field string) Kind {
	if _, ok := p.PredefinedFor(field); ok {
		return KindPredefined
	}
	if _, ok := p.RelationshipKeyFor(field); ok {
		return KindRelationship
	}
	if IsDateField(field) {
		return KindDate
	}
	if IsBlobField(field) {
		return KindBlob
	}
	return KindPlain
}

// IsBlobField reports whether the field name suggests a structured blob.
func IsBlobField(field string) bool {
	lower := strings.ToLower(field)
	for _, hint := range blobHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// IsDateField reports whether the field name suggests a date value.
func IsDateField(field string) bool {
	return strings.Contains(strings.ToLower(field), "date")
}
