package engine

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
)

// DefaultPageSize is used when a query carries no explicit page size.
const DefaultPageSize = 10

// SortField is one member of the ordered sort state.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// QueryState is everything that determines the content of the list request.
// Any change to it must supersede the previous in-flight fetch.
type QueryState struct {
	PageIndex   int         `json:"pageIndex"`
	PageSize    int         `json:"pageSize"`
	Search      string      `json:"search"`
	Sorting     []SortField `json:"sorting"`
	FilterKey   string      `json:"filterKey"`
	FilterValue string      `json:"filterValue"`
}

func (q QueryState) withDefaults() QueryState {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageIndex < 0 {
		q.PageIndex = 0
	}
	return q
}

// Fingerprint is a cheap identity of the request this state produces.
// Issuing the same fingerprint twice must not produce a second request.
func (q QueryState) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\x1f%d\x1f%s\x1f", q.PageIndex, q.PageSize, q.Search)
	for _, s := range q.Sorting {
		if s.Desc {
			b.WriteByte('-')
		}
		b.WriteString(s.Field)
		b.WriteByte(',')
	}
	fmt.Fprintf(&b, "\x1f%s\x1f%s", q.FilterKey, q.FilterValue)
	return b.String()
}

// BuildParams derives the gateway list query from the state. Free-text
// search and the selected custom filter contribute independent filter
// parameters; sort fields are joined in order with a "-" prefix for
// descending.
func BuildParams(cfg *descriptor.PageConfig, q QueryState) url.Values {
	q = q.withDefaults()
	params := url.Values{}
	params.Set("page[number]", strconv.Itoa(q.PageIndex+1))
	params.Set("page[size]", strconv.Itoa(q.PageSize))
	params.Set("page[totals]", "true")

	if q.Search != "" {
		params.Add("filter", q.Search)
	}
	if q.FilterKey != "" {
		if f, ok := cfg.FilterByKey(q.FilterKey); ok {
			switch f.Type {
			case descriptor.FilterDynamic:
				if q.FilterValue != "" {
					params.Add("filter", strings.ReplaceAll(f.FilterValue, "{value}", q.FilterValue))
				}
			default:
				params.Add("filter", f.FilterValue)
			}
		}
	}

	if len(q.Sorting) > 0 {
		parts := make([]string, 0, len(q.Sorting))
		for _, s := range q.Sorting {
			if s.Desc {
				parts = append(parts, "-"+s.Field)
			} else {
				parts = append(parts, s.Field)
			}
		}
		params.Set("sort", strings.Join(parts, ","))
	}

	return params
}
