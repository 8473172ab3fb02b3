package gateway

import "encoding/json"

// Option endpoints answer in heterogeneous envelopes: a bare array, or an
// object wrapping the array under "result" or "data". ExtractItems is the
// single normalization point: it tries each known shape in order and
// returns the first array-typed value found, or ok=false when none matches.
func ExtractItems(raw []byte) ([]map[string]any, bool) {
	var direct []any
	if err := json.Unmarshal(raw, &direct); err == nil {
		return coerceItems(direct), true
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	for _, key := range []string{"result", "data"} {
		inner, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []any
		if err := json.Unmarshal(inner, &items); err == nil {
			return coerceItems(items), true
		}
	}
	return nil, false
}

// coerceItems keeps object-shaped entries; scalar entries are kept under a
// "value" key so fixed string lists survive normalization.
func coerceItems(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
			continue
		}
		out = append(out, map[string]any{"value": item})
	}
	return out
}
