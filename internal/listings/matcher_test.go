package listings

import (
	"io"
	"strings"
	"testing"
)

func testTable() *Table {
	return NewTable([]ListingRecord{
		{Address: "306 Oakdale Dr Bentonville AR 72712", AnnualTaxes: 1840.55, CommissionPercent: 0.027},
		{Address: "890 clark", AnnualTaxes: 2210, CommissionPercent: 0.03},
		{Address: "12 E Maple St Rogers AR", AnnualTaxes: 1512.20, CommissionPercent: 0.025},
	})
}

func TestNormalize(t *testing.T) {
	n := Normalize("890 N. Clark Cir, Apt 4B, Bentonville, AR 72713")
	if n.Number != "890" {
		t.Fatalf("number = %q", n.Number)
	}
	if n.Street != "clark" {
		t.Fatalf("street = %q", n.Street)
	}
	if n.Full != "890 clark bentonville ar 72713" {
		t.Fatalf("full = %q", n.Full)
	}
}

func TestMatchNumberAndStreet(t *testing.T) {
	rec, reason := Match("306 Oakdale Drive, Bentonville AR 72712", testTable())
	if rec == nil {
		t.Fatalf("expected match")
	}
	if reason != MatchPartial {
		t.Fatalf("reason = %s", reason)
	}
	if rec.AnnualTaxes != 1840.55 {
		t.Fatalf("taxes = %v", rec.AnnualTaxes)
	}
}

func TestMatchStrategyPriority(t *testing.T) {
	// The earlier row only containment-matches; the number+street strategy
	// must win even though its row comes later in the table.
	table := NewTable([]ListingRecord{
		{Address: "Bentonville AR 72712", AnnualTaxes: 999},
		{Address: "306 Oakdale Dr", AnnualTaxes: 1840.55},
	})
	rec, reason := Match("306 Oakdale Dr Bentonville AR 72712", table)
	if rec == nil || rec.AnnualTaxes != 1840.55 {
		t.Fatalf("wrong row selected: %+v", rec)
	}
	if reason != MatchPartial {
		t.Fatalf("reason = %s", reason)
	}
}

func TestMatchPrefixSheetEntry(t *testing.T) {
	// Sheet entry "890 clark" against the fully parsed contract address.
	rec, reason := Match("890 Clark Cir Bentonville, AR 72713", testTable())
	if rec == nil {
		t.Fatalf("expected match")
	}
	if reason != MatchPartial && reason != MatchPrefix {
		t.Fatalf("reason = %s", reason)
	}
	if rec.AnnualTaxes != 2210 {
		t.Fatalf("taxes = %v", rec.AnnualTaxes)
	}
}

func TestMatchDirectionalStripped(t *testing.T) {
	rec, _ := Match("12 Maple Street, Rogers, AR", testTable())
	if rec == nil || rec.AnnualTaxes != 1512.20 {
		t.Fatalf("directional-stripped match failed: %+v", rec)
	}
}

func TestMatchMiss(t *testing.T) {
	rec, reason := Match("123 Unknown Street", testTable())
	if rec != nil {
		t.Fatalf("unexpected match: %+v", rec)
	}
	if reason != MatchNone {
		t.Fatalf("reason = %s", reason)
	}
}

func TestMatchWrongNumberDoesNotPrefixMatch(t *testing.T) {
	rec, _ := Match("891 Clark Cir Bentonville AR", testTable())
	if rec != nil {
		t.Fatalf("house number mismatch must not match: %+v", rec)
	}
}

func TestPropertyDataDefaultsOnMiss(t *testing.T) {
	svc := NewService(testTable(), nil)
	res := svc.PropertyData("123 Unknown Street", 1500)
	if res.Source != "default" {
		t.Fatalf("source = %s", res.Source)
	}
	if !res.TaxWarning {
		t.Fatalf("expected tax warning on miss")
	}
	if res.CommissionPercent != DefaultCommission {
		t.Fatalf("commission = %v, want forced %v", res.CommissionPercent, DefaultCommission)
	}
	if res.AnnualTaxes != 1500 {
		t.Fatalf("taxes = %v", res.AnnualTaxes)
	}
}

func TestPropertyDataListingHit(t *testing.T) {
	svc := NewService(testTable(), nil)
	res := svc.PropertyData("890 Clark Cir Bentonville, AR 72713", 1500)
	if res.Source != "listing" || res.TaxWarning {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.AnnualTaxes != 2210 || res.CommissionPercent != 0.03 {
		t.Fatalf("unexpected figures: %+v", res)
	}
}

func TestLoadCSV(t *testing.T) {
	var r io.Reader = strings.NewReader(
		"address,annual_taxes,commission\n" +
			"306 Oakdale Dr Bentonville AR 72712,$1840.55,2.7%\n" +
			"890 clark,2210,0.03\n")
	table, err := parseCSV(r)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d", table.Len())
	}
	recs := table.Records()
	if recs[0].CommissionPercent != 0.027 {
		t.Fatalf("percent form not normalized: %v", recs[0].CommissionPercent)
	}
	if recs[1].CommissionPercent != 0.03 {
		t.Fatalf("fraction form altered: %v", recs[1].CommissionPercent)
	}
}
