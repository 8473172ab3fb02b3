package engine

import (
	"fmt"
	"strconv"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
	"github.com/AbdullahAsendar/chimney-sub000/internal/gateway"
)

// Row is a flattened view of one backend record: the id plus one value per
// attribute, with resolved relationship ids stored under their display
// field names.
type Row map[string]any

// ID returns the record id.
func (r Row) ID() string {
	return asString(r["id"])
}

// clone returns an independent copy. Rows handed out of the engine must
// never alias the engine-owned maps; handlers read them outside the lock.
func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NormalizeResource flattens a JSON:API resource into a Row. Relationship
// ids are overlaid under the configured display field names; an absent
// relationship yields an explicit nil so the renderer can show "-".
func NormalizeResource(cfg *descriptor.PageConfig, res gateway.Resource) Row {
	row := Row{"id": res.ID}
	for k, v := range res.Attributes {
		row[k] = v
	}
	for relKey, display := range cfg.RelationshipFields {
		rel, ok := res.Relationships[relKey]
		if ok && rel.Data != nil {
			row[display] = rel.Data.ID
		} else {
			row[display] = nil
		}
	}
	return row
}

// asString renders a scalar for id/label purposes. JSON numbers arrive as
// float64; integral values must not pick up a decimal point.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
