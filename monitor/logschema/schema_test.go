package logschema

import "testing"

func TestValidate(t *testing.T) {
	err := Validate(EventFill, map[string]interface{}{
		"instrument": "ETH",
		"side":       "BUY",
		"price":      2700.0,
		"qty":        1.5,
		"position":   3.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = Validate(EventFill, map[string]interface{}{
		"instrument": "ETH",
	})
	if err == nil {
		t.Fatalf("expected error for missing fields")
	}
}

func TestValidateUnknownEventPasses(t *testing.T) {
	if err := Validate("error_event", map[string]interface{}{"error": "boom"}); err != nil {
		t.Fatalf("unknown event should not be validated, got %v", err)
	}
}

func TestKnownEvents(t *testing.T) {
	names := Known()
	if len(names) == 0 {
		t.Fatalf("expected non-empty schema list")
	}
	found := false
	for _, n := range names {
		if n == EventRisk {
			found = true
		}
	}
	if !found {
		t.Fatalf("risk_event not found in schemas")
	}
}
