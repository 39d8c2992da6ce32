package contract

import (
	"strings"
	"testing"
)

func fullRecord() Record {
	rec := Record{
		"buyers":               []string{"John Smith", "Jane Smith"},
		"property_address":     "306 Oakdale Dr Bentonville AR 72712",
		"para3_option_checked": "3A",
		"purchase_price":       285000.0,
		"closing_date":         "2025-06-30",
	}
	return rec
}

func TestValidateHappyPath(t *testing.T) {
	rep := Validate(fullRecord(), "306 Oakdale Dr contract.pdf")
	if rep.Critical {
		t.Fatalf("unexpected critical report: %+v", rep)
	}
	if !rep.Valid {
		t.Fatalf("expected valid report: %+v", rep)
	}
}

func TestValidateBothAmountsCritical(t *testing.T) {
	rec := fullRecord()
	rec["cash_amount"] = 285000.0
	rep := Validate(rec, "306 Oakdale Dr contract.pdf")
	if !rep.Critical || rep.Valid {
		t.Fatalf("expected critical report, got %+v", rep)
	}
}

func TestValidateNeitherAmountCritical(t *testing.T) {
	rec := fullRecord()
	rec["purchase_price"] = nil
	rep := Validate(rec, "306 Oakdale Dr contract.pdf")
	if !rep.Critical {
		t.Fatalf("expected critical report, got %+v", rep)
	}
	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "neither purchase_price nor cash_amount") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing purchase-amount warning: %+v", rep.Warnings)
	}
}

func TestValidateCashOptionNeedsCashAmount(t *testing.T) {
	rec := fullRecord()
	rec["para3_option_checked"] = "3C"
	rep := Validate(rec, "306 Oakdale Dr contract.pdf")
	if !rep.Critical {
		t.Fatalf("3C with purchase_price set should be critical: %+v", rep)
	}
}

func TestValidateFilenameMismatchCritical(t *testing.T) {
	rep := Validate(fullRecord(), "1200 Walnut St contract.pdf")
	if !rep.Critical {
		t.Fatalf("expected critical address mismatch, got %+v", rep)
	}
}

func TestValidateFilenameWithoutNumberIsInformational(t *testing.T) {
	rep := Validate(fullRecord(), "scanned contract final.pdf")
	if rep.Critical {
		t.Fatalf("missing filename number must not be critical: %+v", rep)
	}
	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "cross-check skipped") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected informational warning: %+v", rep.Warnings)
	}
}

func TestValidateLowCompletenessWarning(t *testing.T) {
	rep := Validate(fullRecord(), "306 Oakdale Dr contract.pdf")
	found := false
	for _, w := range rep.Warnings {
		if strings.Contains(w, "low extraction completeness") {
			found = true
		}
	}
	if !found {
		t.Fatalf("five filled fields should trip the completeness warning: %+v", rep.Warnings)
	}
}

func TestValidatePresenceWarnings(t *testing.T) {
	rec := fullRecord()
	delete(rec, "buyers")
	rec["para3_option_checked"] = ""
	rep := Validate(rec, "306 Oakdale Dr contract.pdf")
	var buyers, para3 bool
	for _, w := range rep.Warnings {
		if strings.Contains(w, "buyers not extracted") {
			buyers = true
		}
		if strings.Contains(w, "para3_option_checked not extracted") {
			para3 = true
		}
	}
	if !buyers || !para3 {
		t.Fatalf("missing presence warnings: %+v", rep.Warnings)
	}
}
