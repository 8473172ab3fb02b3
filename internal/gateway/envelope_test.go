package gateway

import "testing"

func TestExtractItems_BareArray(t *testing.T) {
	items, ok := ExtractItems([]byte(`[{"id":"1"},{"id":"2"}]`))
	if !ok || len(items) != 2 || items[0]["id"] != "1" {
		t.Errorf("items = %v, ok = %v", items, ok)
	}
}

func TestExtractItems_ResultWrapper(t *testing.T) {
	items, ok := ExtractItems([]byte(`{"result":[{"id":"1"}]}`))
	if !ok || len(items) != 1 {
		t.Errorf("items = %v, ok = %v", items, ok)
	}
}

func TestExtractItems_DataWrapper(t *testing.T) {
	items, ok := ExtractItems([]byte(`{"data":[{"id":"1"}]}`))
	if !ok || len(items) != 1 {
		t.Errorf("items = %v, ok = %v", items, ok)
	}
}

func TestExtractItems_ResultWinsOverData(t *testing.T) {
	items, ok := ExtractItems([]byte(`{"result":[{"id":"r"}],"data":[{"id":"d"}]}`))
	if !ok || len(items) != 1 || items[0]["id"] != "r" {
		t.Errorf("items = %v, ok = %v", items, ok)
	}
}

func TestExtractItems_ScalarsCoerced(t *testing.T) {
	items, ok := ExtractItems([]byte(`["DRAFT","ACTIVE"]`))
	if !ok || len(items) != 2 {
		t.Fatalf("items = %v, ok = %v", items, ok)
	}
	if items[0]["value"] != "DRAFT" {
		t.Errorf("scalar entry = %v, want value-keyed", items[0])
	}
}

func TestExtractItems_NoKnownShape(t *testing.T) {
	for _, raw := range []string{`{"other":[]}`, `{"result":"nope"}`, `42`, `"text"`} {
		if items, ok := ExtractItems([]byte(raw)); ok {
			t.Errorf("ExtractItems(%s) = %v, want no match", raw, items)
		}
	}
}
