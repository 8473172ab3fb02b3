package descriptor

import "testing"

func testPage() *PageConfig {
	return &PageConfig{
		Entity:  "application",
		Service: "application-service",
		Fields:  []string{"customerId", "status", "startDate", "payloadJson", "deleted"},
		PredefinedFields: map[string]PredefinedField{
			"status": {Selection: SelectionSingle, Options: []string{"DRAFT", "ACTIVE"}},
		},
		RelationshipFields: map[string]string{
			"customer": "customerId",
		},
	}
}

func TestClassify_Precedence(t *testing.T) {
	cfg := testPage()
	// A relationship display field named like a blob still classifies as
	// relationship.
	cfg.RelationshipFields["payload"] = "payloadJson"

	tests := []struct {
		field string
		want  Kind
	}{
		{"customerId", KindRelationship},
		{"payloadJson", KindRelationship},
		{"deleted", KindDeleted},
		{"rulesJson", KindBlob},
		{"startDate", KindDate},
		{"status", KindPlain},
		{"amount", KindPlain},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := cfg.Classify(tt.field); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestInputKind_PredefinedWinsOverRelationship(t *testing.T) {
	cfg := testPage()
	cfg.PredefinedFields["customerId"] = PredefinedField{Selection: SelectionSingle, Options: []string{"a"}}

	if got := cfg.InputKind("customerId"); got != KindPredefined {
		t.Errorf("InputKind(customerId) = %q, want %q", got, KindPredefined)
	}
	if got := cfg.InputKind("startDate"); got != KindDate {
		t.Errorf("InputKind(startDate) = %q, want %q", got, KindDate)
	}
	if got := cfg.InputKind("payloadJson"); got != KindRelationship {
		t.Errorf("InputKind(payloadJson) = %q, want %q", got, KindRelationship)
	}
}

func TestIsBlobField(t *testing.T) {
	for _, field := range []string{"payloadJson", "rawData", "appConfig", "metadata", "uiSettings"} {
		if !IsBlobField(field) {
			t.Errorf("IsBlobField(%q) = false, want true", field)
		}
	}
	for _, field := range []string{"firstName", "amount", "status"} {
		if IsBlobField(field) {
			t.Errorf("IsBlobField(%q) = true, want false", field)
		}
	}
}

func TestIsDateField(t *testing.T) {
	if !IsDateField("startDate") || !IsDateField("dueDateTime") {
		t.Error("date-named fields must classify as dates")
	}
	if IsDateField("status") {
		t.Error("status must not classify as a date")
	}
}
