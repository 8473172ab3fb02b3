package gateway

// JSON:API-shaped document types used on the wire to and from the REST
// gateway. Only the subset the console engine needs is modeled.

// ResourceIdentifier points at one resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship carries a to-one linkage. Absent data means the relationship
// is unset.
type Relationship struct {
	Data *ResourceIdentifier `json:"data"`
}

// Resource is one backend record as returned by the gateway.
type Resource struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type,omitempty"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// PageMeta carries pagination totals.
type PageMeta struct {
	TotalRecords int `json:"totalRecords"`
}

// Meta is the list response metadata envelope.
type Meta struct {
	Page *PageMeta `json:"page,omitempty"`
}

// ListDocument is the gateway's list response.
type ListDocument struct {
	Data []Resource `json:"data"`
	Meta *Meta      `json:"meta,omitempty"`
}

// SingleDocument is the gateway's single-resource response.
type SingleDocument struct {
	Data Resource `json:"data"`
}

// WriteResource is the body of a create or patch request.
type WriteResource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// WritePayload wraps a WriteResource in the data envelope.
type WritePayload struct {
	Data WriteResource `json:"data"`
}

// NewCreatePayload builds a POST body for an entity.
func NewCreatePayload(entity string, attributes map[string]any, relationships map[string]Relationship) WritePayload {
	p := WritePayload{Data: WriteResource{Type: entity, Attributes: attributes}}
	if len(relationships) > 0 {
		p.Data.Relationships = relationships
	}
	return p
}

// NewPatchPayload builds a PATCH body for an entity instance.
func NewPatchPayload(entity, id string, attributes map[string]any, relationships map[string]Relationship) WritePayload {
	p := WritePayload{Data: WriteResource{Type: entity, ID: id, Attributes: attributes}}
	if len(relationships) > 0 {
		p.Data.Relationships = relationships
	}
	return p
}
