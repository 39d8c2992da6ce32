package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

var csvHeader = []string{
	"source_file", "property_address", "buyers",
	"sales_price", "seller_concessions", "taxes_prorated", "commission_seller",
	"buyer_agency_fees", "closing_fee", "title_search", "title_insurance",
	"title_recording_fees", "pest_transfer", "survey", "tax_stamps",
	"home_warranty", "total_costs", "cash_to_seller",
	"days_of_tax", "tax_source", "tax_warning", "valid", "critical",
}

// NetSheetsCSV renders one summary row per processed contract. Results
// without a net sheet (missing sales price) still get a row so the batch
// report shows what needs human attention.
func (s *Service) NetSheetsCSV(results []*pipeline.DocumentResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	for _, res := range results {
		row := make([]string, 0, len(csvHeader))
		row = append(row,
			res.SourceFile,
			res.Record.String("property_address"),
			joinStrings(res.Record.Strings("buyers")),
		)
		if ns := res.NetSheet; ns != nil {
			row = append(row,
				money(ns.SalesPrice), money(ns.SellerConcessions), money(ns.TaxesProrated),
				money(ns.CommissionSeller), money(ns.BuyerAgencyFees), money(ns.ClosingFee),
				money(ns.TitleSearch), money(ns.TitleInsurance), money(ns.TitleRecordingFees),
				money(ns.PestTransfer), money(ns.Survey), money(ns.TaxStamps),
				money(ns.HomeWarranty), money(ns.TotalCosts), money(ns.CashToSeller),
				strconv.Itoa(ns.DaysOfTax),
			)
		} else {
			for i := 0; i < 16; i++ {
				row = append(row, "")
			}
		}
		row = append(row,
			res.Lookup.Source,
			strconv.FormatBool(res.Lookup.TaxWarning),
			strconv.FormatBool(res.Report.Valid),
			strconv.FormatBool(res.Report.Critical),
		)
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("csv row for %s: %w", res.SourceFile, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += "; "
		}
		out += s
	}
	return out
}
