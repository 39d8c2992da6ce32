package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arkclose/netsheet-tracker/internal/netsheet"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

// Service renders net-sheet results into the formats agents actually send
// out: an XLSX workbook per contract and a CSV summary across contracts.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// netSheetLines returns the labeled cost rows in presentation order.
func netSheetLines(s *netsheet.Result) []struct {
	Label  string
	Amount float64
} {
	return []struct {
		Label  string
		Amount float64
	}{
		{"Seller Concessions", s.SellerConcessions},
		{"Taxes Prorated", s.TaxesProrated},
		{"Commission (Seller Side)", s.CommissionSeller},
		{"Buyer Agency Fees", s.BuyerAgencyFees},
		{"Closing Fee", s.ClosingFee},
		{"Title Search", s.TitleSearch},
		{"Title Insurance", s.TitleInsurance},
		{"Title Recording Fees", s.TitleRecordingFees},
		{"Pest Transfer Letter", s.PestTransfer},
		{"Survey", s.Survey},
		{"Tax Stamps", s.TaxStamps},
		{"Home Warranty", s.HomeWarranty},
	}
}

// NetSheetXLSX returns an XLSX workbook (as bytes) for one processed
// contract: property header, itemized costs, totals, and provenance.
func (s *Service) NetSheetXLSX(res *pipeline.DocumentResult) ([]byte, error) {
	if res.NetSheet == nil {
		return nil, fmt.Errorf("no net sheet on result for %s", res.SourceFile)
	}
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Seller Net Sheet"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultIndex, _ := f.GetSheetIndex("Sheet1")
	if defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	ns := res.NetSheet
	write(1, 1, "Property")
	write(2, 1, res.Record.String("property_address"))
	write(1, 2, "Source Document")
	write(2, 2, res.SourceFile)
	write(1, 3, "Calculated")
	write(2, 3, ns.CalculationDate.Format("2006-01-02 15:04 MST"))
	write(1, 4, "Sales Price")
	write(2, 4, ns.SalesPrice)

	row := 6
	write(1, row, "Cost Item")
	write(2, row, "Amount")
	row++
	for _, line := range netSheetLines(ns) {
		write(1, row, line.Label)
		write(2, row, line.Amount)
		row++
	}
	write(1, row, "Total Costs")
	write(2, row, ns.TotalCosts)
	row++
	write(1, row, "Estimated Cash to Seller")
	write(2, row, ns.CashToSeller)
	row += 2

	write(1, row, "Days of Tax")
	write(2, row, ns.DaysOfTax)
	row++
	write(1, row, "Tax per Day")
	write(2, row, ns.TaxPerDay)
	row++
	write(1, row, "Tax Source")
	write(2, row, res.Lookup.Source)
	if res.Lookup.TaxWarning {
		row++
		write(1, row, "NOTE")
		write(2, row, "Tax figure is a default; verify against county records.")
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 44)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"file", res.SourceFile,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
