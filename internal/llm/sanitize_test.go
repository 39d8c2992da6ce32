package llm

import (
	"encoding/json"
	"testing"
)

func TestNormalizeAndSanitizePage(t *testing.T) {
	raw := []byte(`{
		"address": "306 Oakdale Dr Bentonville AR",
		"purchase_price": "$285,000.00",
		"para3_option_checked": "a",
		"home_warranty": true,
		"closing_date": "June 30, 2025",
		"loan_type": null,
		"model_notes": "looks clean"
	}`)

	cleaned, dropped, err := NormalizeAndSanitizePage(raw, nil)
	if err != nil {
		t.Fatalf("NormalizeAndSanitizePage: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(cleaned, &m); err != nil {
		t.Fatalf("decode cleaned: %v", err)
	}

	if m["property_address"] != "306 Oakdale Dr Bentonville AR" {
		t.Fatalf("address rename failed: %v", m["property_address"])
	}
	if m["purchase_price"] != 285000.0 {
		t.Fatalf("purchase_price = %v", m["purchase_price"])
	}
	if m["para3_option_checked"] != "3A" {
		t.Fatalf("para3 = %v", m["para3_option_checked"])
	}
	if m["home_warranty"] != "yes" {
		t.Fatalf("home_warranty = %v", m["home_warranty"])
	}
	if m["closing_date"] != "2025-06-30" {
		t.Fatalf("closing_date = %v", m["closing_date"])
	}
	if _, ok := m["loan_type"]; ok {
		t.Fatalf("null field should be dropped")
	}
	if _, ok := m["model_notes"]; ok {
		t.Fatalf("unknown key should be dropped")
	}
	if len(dropped) == 0 {
		t.Fatalf("expected dropped keys to be reported")
	}

	// the cleaned object must pass the strict schema
	if err := ValidatePage(BuildContractJSONSchema(), cleaned); err != nil {
		t.Fatalf("cleaned page fails schema: %v", err)
	}
}

func TestSanitizedEmptyStringSurvives(t *testing.T) {
	cleaned, _, err := NormalizeAndSanitizePage([]byte(`{"survey_option": ""}`), nil)
	if err != nil {
		t.Fatalf("NormalizeAndSanitizePage: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(cleaned, &m); err != nil {
		t.Fatalf("decode cleaned: %v", err)
	}
	if v, ok := m["survey_option"]; !ok || v != "" {
		t.Fatalf("observed-but-empty field must survive sanitize: %v", m)
	}
}
