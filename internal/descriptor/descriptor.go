// Package descriptor holds the declarative configuration that drives the
// generic CRUD engine: which fields a console page shows, which of them are
// predefined-choice or relationship fields, how records may be filtered and
// which fields an operator may edit.
package descriptor

// Selection defines how a predefined-choice field is picked.
type Selection string

const (
	SelectionSingle Selection = "single"
	SelectionMulti  Selection = "multi"
)

// FilterType defines whether a custom filter carries a fixed predicate or is
// parameterized by a dynamically loaded option.
type FilterType string

const (
	FilterStatic  FilterType = "static"
	FilterDynamic FilterType = "dynamic"
)

// PredefinedField restricts a field to an enumerated set of values, either
// fixed in configuration or loaded from a gateway endpoint.
type PredefinedField struct {
	Selection   Selection `json:"selection"`
	Options     []string  `json:"options,omitempty"`
	APIEndpoint string    `json:"apiEndpoint,omitempty"`
	Service     string    `json:"service,omitempty"`
}

// Dynamic reports whether the option set is loaded from the gateway.
func (p PredefinedField) Dynamic() bool {
	return p.APIEndpoint != ""
}

// RelationshipOption describes where the options for a relationship field
// are loaded from and how an option is labeled.
type RelationshipOption struct {
	Service          string `json:"service"`
	Entity           string `json:"entity"`
	LabelField       string `json:"labelField,omitempty"`
	ValueField       string `json:"valueField,omitempty"`
	IsLookupEndpoint bool   `json:"isLookupEndpoint,omitempty"`
}

// CustomFilter is a named, operator-selectable server-side filter predicate.
// Static filters carry the predicate verbatim in FilterValue; dynamic
// filters substitute "{value}" with the chosen option.
type CustomFilter struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	FilterValue string     `json:"filterValue"`
	Type        FilterType `json:"type"`
	APIEndpoint string     `json:"apiEndpoint,omitempty"`
	Service     string     `json:"service,omitempty"`
	LabelField  string     `json:"labelField,omitempty"`
	ValueField  string     `json:"valueField,omitempty"`
}

// PageConfig is the full static configuration of one console CRUD page.
// A PageConfig is immutable once registered.
type PageConfig struct {
	Entity  string   `json:"entity"`
	Service string   `json:"service"`
	Fields  []string `json:"fields"`

	EnableCreate bool `json:"enableCreate"`
	EnableEdit   bool `json:"enableEdit"`
	EnableDelete bool `json:"enableDelete"`

	// EditAllAttributes widens the edit form to every non-system row key
	// instead of just Fields.
	EditAllAttributes bool `json:"editAllAttributes,omitempty"`

	PredefinedFields map[string]PredefinedField `json:"predefinedFields,omitempty"`

	// UpdateableFields restricts and orders editable fields when present.
	UpdateableFields []string `json:"updateableFields,omitempty"`

	CreateDefaults map[string]any `json:"createDefaults,omitempty"`

	// RelationshipFields maps relationship key -> local display field name
	// that stores the foreign id (e.g. "workflow" -> "workflowId").
	RelationshipFields  map[string]string             `json:"relationshipFields,omitempty"`
	RelationshipOptions map[string]RelationshipOption `json:"relationshipOptions,omitempty"`

	CustomFilters []CustomFilter `json:"customFilters,omitempty"`

	// BlobSchemas optionally attaches a JSON Schema document to a
	// structured-blob field; the form engine validates edits against it.
	BlobSchemas map[string]string `json:"-"`
}

// systemFields are backend-managed attributes never offered for editing and
// stripped from submit payloads.
var systemFields = map[string]struct{}{
	"id":                  {},
	"createTimestamp":     {},
	"updateTimestamp":     {},
	"createdByAccountId":  {},
	"updatedByAccountId":  {},
	"source":              {},
	"error":               {},
	"jobId":               {},
}

// IsSystemField reports whether the field is backend-managed.
func IsSystemField(name string) bool {
	_, ok := systemFields[name]
	return ok
}

// RelationshipKeyFor returns the relationship key whose display field is the
// given field name.
func (p *PageConfig) RelationshipKeyFor(field string) (string, bool) {
	for key, display := range p.RelationshipFields {
		if display == field {
			return key, true
		}
	}
	return "", false
}

// DisplayField returns the local display field for a relationship key.
func (p *PageConfig) DisplayField(relationshipKey string) (string, bool) {
	display, ok := p.RelationshipFields[relationshipKey]
	return display, ok
}

// PredefinedFor returns the predefined-choice spec for a field, if any.
func (p *PageConfig) PredefinedFor(field string) (PredefinedField, bool) {
	spec, ok := p.PredefinedFields[field]
	return spec, ok
}

// FilterByKey returns the custom filter with the given key.
func (p *PageConfig) FilterByKey(key string) (CustomFilter, bool) {
	for _, f := range p.CustomFilters {
		if f.Key == key {
			return f, true
		}
	}
	return CustomFilter{}, false
}

// EditableFields resolves the ordered list of fields the edit form offers.
// An explicit UpdateableFields allow-list wins and fixes the order; in
// edit-all mode every non-system row key is editable (declared fields first,
// extra row keys after, in the order given); otherwise the declared fields
// minus system fields.
func (p *PageConfig) EditableFields(rowKeys []string) []string {
	if len(p.UpdateableFields) > 0 {
		return append([]string(nil), p.UpdateableFields...)
	}

	seen := make(map[string]struct{}, len(p.Fields))
	var out []string
	for _, f := range p.Fields {
		if IsSystemField(f) {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	if p.EditAllAttributes {
		for _, k := range rowKeys {
			if IsSystemField(k) {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
