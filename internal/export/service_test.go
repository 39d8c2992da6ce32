package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"

	"github.com/arkclose/netsheet-tracker/internal/contract"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/netsheet"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

func sampleResult(t *testing.T) *pipeline.DocumentResult {
	t.Helper()
	sheet, err := netsheet.Calculate(netsheet.Input{
		PurchasePrice:     300000,
		ClosingDate:       "2025-06-30",
		TitleOption:       "A",
		AnnualTaxes:       1825,
		CommissionPercent: 0.03,
	})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return &pipeline.DocumentResult{
		JobID:      uuid.New(),
		SourceFile: "306 Oakdale Dr contract.pdf",
		Record: contract.Record{
			"property_address": "306 Oakdale Dr Bentonville AR 72712",
			"buyers":           []string{"John Smith", "Jane Smith"},
		},
		Report:   contract.ValidationReport{Valid: true},
		Lookup:   listings.LookupResult{AnnualTaxes: 1825, CommissionPercent: 0.03, Source: "listing"},
		NetSheet: sheet,
	}
}

func TestNetSheetXLSX(t *testing.T) {
	svc := NewService(nil)
	b, err := svc.NetSheetXLSX(sampleResult(t))
	if err != nil {
		t.Fatalf("NetSheetXLSX: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("empty workbook")
	}
}

func TestNetSheetXLSXRequiresSheet(t *testing.T) {
	res := sampleResult(t)
	res.NetSheet = nil
	if _, err := NewService(nil).NetSheetXLSX(res); err == nil {
		t.Fatalf("expected error without a net sheet")
	}
}

func TestNetSheetsCSV(t *testing.T) {
	withSheet := sampleResult(t)
	withoutSheet := sampleResult(t)
	withoutSheet.NetSheet = nil
	withoutSheet.Report = contract.ValidationReport{Valid: false, Critical: true}

	b, err := NewService(nil).NetSheetsCSV([]*pipeline.DocumentResult{withSheet, withoutSheet})
	if err != nil {
		t.Fatalf("NetSheetsCSV: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(csvHeader) {
			t.Fatalf("row %d has %d columns, want %d", i, len(row), len(csvHeader))
		}
	}
	if rows[1][3] != "300000.00" {
		t.Fatalf("sales_price column = %q", rows[1][3])
	}
	if rows[2][3] != "" {
		t.Fatalf("missing net sheet should leave amounts blank, got %q", rows[2][3])
	}
	if rows[2][len(csvHeader)-1] != "true" {
		t.Fatalf("critical column = %q", rows[2][len(csvHeader)-1])
	}
}
