package engine

import "time"

// dateLayouts are tried in order when coercing date-named field values.
// The lenient "2006-1-2" forms accept unpadded operator input.
var dateLayouts = []string{
	time.RFC3339,
	"2006-1-2T15:4:5",
	"2006-1-2 15:4:5",
	"2006-1-2",
	"2006/1/2",
}

// NormalizeDate coerces a raw value to the date-only form YYYY-MM-DD.
// ok=false means the input did not parse; callers keep the raw value
// unchanged in that case.
func NormalizeDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
