package engine

import (
	"testing"

	"github.com/AbdullahAsendar/chimney-sub000/internal/descriptor"
)

func queryPage() *descriptor.PageConfig {
	return &descriptor.PageConfig{
		Entity:  "application",
		Service: "application-service",
		Fields:  []string{"status", "startDate"},
		CustomFilters: []descriptor.CustomFilter{
			{Key: "active", FilterValue: "deleted==false", Type: descriptor.FilterStatic},
			{Key: "byWorkflow", FilterValue: "workflowId=={value}", Type: descriptor.FilterDynamic},
		},
	}
}

func TestFingerprint_IdenticalStates(t *testing.T) {
	a := QueryState{PageIndex: 2, PageSize: 25, Search: "x", Sorting: []SortField{{Field: "name", Desc: true}}}
	b := QueryState{PageIndex: 2, PageSize: 25, Search: "x", Sorting: []SortField{{Field: "name", Desc: true}}}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical states must share a fingerprint")
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	base := QueryState{PageIndex: 1, PageSize: 10, Search: "x", FilterKey: "active"}
	variants := []QueryState{
		{PageIndex: 2, PageSize: 10, Search: "x", FilterKey: "active"},
		{PageIndex: 1, PageSize: 25, Search: "x", FilterKey: "active"},
		{PageIndex: 1, PageSize: 10, Search: "y", FilterKey: "active"},
		{PageIndex: 1, PageSize: 10, Search: "x", FilterKey: "byWorkflow"},
		{PageIndex: 1, PageSize: 10, Search: "x", FilterKey: "active", FilterValue: "v"},
		{PageIndex: 1, PageSize: 10, Search: "x", FilterKey: "active", Sorting: []SortField{{Field: "name"}}},
		{PageIndex: 1, PageSize: 10, Search: "x", FilterKey: "active", Sorting: []SortField{{Field: "name", Desc: true}}},
	}

	for i, v := range variants {
		if base.Fingerprint() == v.Fingerprint() {
			t.Errorf("variant %d must not share the base fingerprint", i)
		}
	}
}

func TestBuildParams_Paging(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{PageIndex: 2, PageSize: 25})

	if got := params.Get("page[number]"); got != "3" {
		t.Errorf("page[number] = %q, want 3 (one-based)", got)
	}
	if got := params.Get("page[size]"); got != "25" {
		t.Errorf("page[size] = %q, want 25", got)
	}
	if got := params.Get("page[totals]"); got != "true" {
		t.Errorf("page[totals] = %q, want true", got)
	}
}

func TestBuildParams_Defaults(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{})

	if got := params.Get("page[number]"); got != "1" {
		t.Errorf("page[number] = %q, want 1", got)
	}
	if got := params.Get("page[size]"); got != "10" {
		t.Errorf("page[size] = %q, want 10", got)
	}
}

func TestBuildParams_SearchAndStaticFilterCoexist(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{Search: "smith", FilterKey: "active"})

	filters := params["filter"]
	if len(filters) != 2 {
		t.Fatalf("filter params = %v, want two entries", filters)
	}
	if filters[0] != "smith" || filters[1] != "deleted==false" {
		t.Errorf("filter params = %v", filters)
	}
}

func TestBuildParams_DynamicFilterSubstitutes(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{FilterKey: "byWorkflow", FilterValue: "wf-7"})

	filters := params["filter"]
	if len(filters) != 1 || filters[0] != "workflowId==wf-7" {
		t.Errorf("filter params = %v, want [workflowId==wf-7]", filters)
	}
}

func TestBuildParams_DynamicFilterWithoutValueSkipped(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{FilterKey: "byWorkflow"})

	if filters := params["filter"]; len(filters) != 0 {
		t.Errorf("filter params = %v, want none", filters)
	}
}

func TestBuildParams_Sort(t *testing.T) {
	params := BuildParams(queryPage(), QueryState{
		Sorting: []SortField{{Field: "createTimestamp", Desc: true}, {Field: "status"}},
	})

	if got := params.Get("sort"); got != "-createTimestamp,status" {
		t.Errorf("sort = %q, want -createTimestamp,status", got)
	}
}
