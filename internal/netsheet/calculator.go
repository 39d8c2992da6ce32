package netsheet

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrNoSalesPrice is the calculator's only hard failure: every other figure
// is derived from the sales price or independently defaulted.
var ErrNoSalesPrice = errors.New("netsheet: no usable sales price")

// Input is the subset of contract data plus the listing lookup the
// calculator consumes. Exactly one of PurchasePrice/CashAmount should be
// positive; whichever is set becomes the sales price.
type Input struct {
	PurchasePrice     float64
	CashAmount        float64
	SellerConcessions string // free text: "$5,000" or "2%"
	ClosingDate       string
	TitleOption       string // A, B, or C
	BuyerAgencyFee    string // free text: "3%", "$1,500", "2.7"
	HomeWarranty      bool
	HomeWarrantyPaid  string // "seller" or "buyer"
	HomeWarrantyCost  float64
	SurveyRequired    bool
	SurveyPaidBy      string // "seller" or "buyer"
	AnnualTaxes       float64
	CommissionPercent float64
	Fees              FeeSchedule
}

// Result is the itemized seller net sheet. All currency figures are dollars
// rounded to cents. TotalCosts is always the exact sum of the cost line
// items and CashToSeller is SalesPrice − TotalCosts; a recompute with the
// same input yields identical numbers except CalculationDate.
type Result struct {
	SalesPrice         float64 `json:"sales_price"`
	SellerConcessions  float64 `json:"seller_concessions"`
	TaxesProrated      float64 `json:"taxes_prorated"`
	CommissionSeller   float64 `json:"commission_seller"`
	BuyerAgencyFees    float64 `json:"buyer_agency_fees"`
	ClosingFee         float64 `json:"closing_fee"`
	TitleSearch        float64 `json:"title_search"`
	TitleInsurance     float64 `json:"title_insurance"`
	TitleRecordingFees float64 `json:"title_recording_fees"`
	PestTransfer       float64 `json:"pest_transfer"`
	Survey             float64 `json:"survey"`
	TaxStamps          float64 `json:"tax_stamps"`
	HomeWarranty       float64 `json:"home_warranty"`
	TotalCosts         float64 `json:"total_costs"`
	CashToSeller       float64 `json:"cash_to_seller"`

	// provenance
	DaysOfTax       int       `json:"days_of_tax"`
	TaxPerDay       float64   `json:"tax_per_day"`
	CalculationDate time.Time `json:"calculation_date"`
}

// Calculate computes the net sheet. Pure apart from CalculationDate: no
// hidden state, no I/O, missing optional inputs default to zero.
func Calculate(in Input) (*Result, error) {
	salesPrice := in.PurchasePrice
	if salesPrice <= 0 {
		salesPrice = in.CashAmount
	}
	if salesPrice <= 0 {
		return nil, ErrNoSalesPrice
	}

	fees := in.Fees
	if fees == (FeeSchedule{}) {
		fees = DefaultFeeSchedule()
	}

	days, perDay := prorateTaxes(in.ClosingDate, in.AnnualTaxes)

	res := &Result{
		SalesPrice:         roundCents(salesPrice),
		SellerConcessions:  resolveFeeText(in.SellerConcessions, salesPrice),
		TaxesProrated:      roundCents(float64(days) * perDay),
		CommissionSeller:   roundCents(salesPrice * in.CommissionPercent),
		BuyerAgencyFees:    resolveFeeText(in.BuyerAgencyFee, salesPrice),
		ClosingFee:         fees.ClosingFee,
		TitleSearch:        fees.TitleSearch,
		TitleInsurance:     fees.TitleInsurance(in.TitleOption, salesPrice),
		TitleRecordingFees: fees.TitleRecordingFees,
		PestTransfer:       fees.PestTransfer,
		TaxStamps:          fees.TaxStamps(salesPrice),
		DaysOfTax:          days,
		TaxPerDay:          roundCents(perDay),
		CalculationDate:    time.Now().UTC(),
	}

	if in.HomeWarranty && strings.EqualFold(strings.TrimSpace(in.HomeWarrantyPaid), "seller") {
		res.HomeWarranty = roundCents(in.HomeWarrantyCost)
	}
	if in.SurveyRequired && strings.EqualFold(strings.TrimSpace(in.SurveyPaidBy), "seller") {
		res.Survey = fees.Survey
	}

	res.TotalCosts = roundCents(res.SellerConcessions +
		res.TaxesProrated +
		res.CommissionSeller +
		res.BuyerAgencyFees +
		res.ClosingFee +
		res.TitleSearch +
		res.TitleInsurance +
		res.TitleRecordingFees +
		res.PestTransfer +
		res.Survey +
		res.TaxStamps +
		res.HomeWarranty)
	res.CashToSeller = roundCents(res.SalesPrice - res.TotalCosts)
	return res, nil
}

// prorateTaxes counts calendar days from January 1 of the closing year
// through the closing date inclusive, against a flat 365-day year. An
// unparseable or missing closing date prorates zero days.
func prorateTaxes(closingDate string, annualTaxes float64) (days int, perDay float64) {
	perDay = annualTaxes / 365
	closing, ok := parseDate(closingDate)
	if !ok {
		return 0, perDay
	}
	jan1 := time.Date(closing.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days = int(closing.Sub(jan1).Hours()/24) + 1
	return days, perDay
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeOption pulls the checked option letter out of free text: "B",
// "B.", "Option B", "7B". Words that merely contain an A/B/C ("Buyer pays")
// do not count.
func normalizeOption(option string) string {
	tokens := strings.FieldsFunc(strings.ToUpper(option), func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	for _, tok := range tokens {
		last := tok[len(tok)-1]
		if last < 'A' || last > 'C' {
			continue
		}
		if len(tok) == 1 || allDigits(tok[:len(tok)-1]) {
			return string(last)
		}
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
