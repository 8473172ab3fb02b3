package descriptor

import (
	"reflect"
	"testing"
)

func TestEditableFields_AllowListWins(t *testing.T) {
	cfg := testPage()
	cfg.UpdateableFields = []string{"status", "startDate"}

	got := cfg.EditableFields([]string{"anything", "else"})
	want := []string{"status", "startDate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EditableFields = %v, want %v", got, want)
	}
}

func TestEditableFields_StripsSystemFields(t *testing.T) {
	cfg := testPage()
	cfg.Fields = []string{"id", "firstName", "createTimestamp", "email", "source"}

	got := cfg.EditableFields(nil)
	want := []string{"firstName", "email"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EditableFields = %v, want %v", got, want)
	}
}

func TestEditableFields_EditAllAppendsRowKeys(t *testing.T) {
	cfg := testPage()
	cfg.Fields = []string{"name", "severity"}
	cfg.EditAllAttributes = true

	got := cfg.EditableFields([]string{"id", "name", "extraField", "jobId"})
	want := []string{"name", "severity", "extraField"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EditableFields = %v, want %v", got, want)
	}
}

func TestRelationshipKeyFor(t *testing.T) {
	cfg := testPage()

	key, ok := cfg.RelationshipKeyFor("customerId")
	if !ok || key != "customer" {
		t.Errorf("RelationshipKeyFor(customerId) = %q, %v", key, ok)
	}
	if _, ok := cfg.RelationshipKeyFor("status"); ok {
		t.Error("status must not resolve to a relationship key")
	}
}

func TestFilterByKey(t *testing.T) {
	cfg := testPage()
	cfg.CustomFilters = []CustomFilter{
		{Key: "active", FilterValue: "deleted==false", Type: FilterStatic},
	}

	f, ok := cfg.FilterByKey("active")
	if !ok || f.FilterValue != "deleted==false" {
		t.Errorf("FilterByKey(active) = %+v, %v", f, ok)
	}
	if _, ok := cfg.FilterByKey("missing"); ok {
		t.Error("missing filter key must not resolve")
	}
}

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	r.Register(&PageConfig{Entity: "b"})
	r.Register(&PageConfig{Entity: "a"})
	r.Register(&PageConfig{Entity: "b"}) // re-register keeps position

	pages := r.List()
	if len(pages) != 2 || pages[0].Entity != "b" || pages[1].Entity != "a" {
		t.Errorf("List order = %v", pages)
	}
}

func TestDefaultRegistry_PagesComplete(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"customer", "application", "workerTask", "propertyBlock", "customerBlock", "validation"} {
		cfg, ok := r.Get(name)
		if !ok {
			t.Fatalf("page %q missing", name)
		}
		if cfg.Service == "" || len(cfg.Fields) == 0 {
			t.Errorf("page %q incomplete: %+v", name, cfg)
		}
	}
}
