package contract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arkclose/netsheet-tracker/constants"
)

// ValidationReport summarizes cross-field checks on a merged record.
// Critical findings mean the record should not be trusted without human
// review; they never block net-sheet computation.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Critical bool     `json:"critical"`
	Warnings []string `json:"warnings"`
}

var leadingNumberRe = regexp.MustCompile(`^(\d+)`)

// filenameStopwords are document words skipped when deriving a street-name
// token from the source filename.
var filenameStopwords = map[string]struct{}{
	"contract": {}, "offer": {}, "signed": {}, "executed": {}, "final": {},
	"copy": {}, "scan": {}, "scanned": {}, "amended": {}, "accepted": {},
	"real": {}, "estate": {}, "purchase": {}, "agreement": {}, "pdf": {},
}

// Validate runs the cross-field checks against a merged record. The source
// filename is used only as a sanity cross-check against the extracted
// address. Validate never returns an error; everything lands in the report.
func Validate(rec Record, filename string) ValidationReport {
	report := ValidationReport{Valid: true}
	warn := func(critical bool, format string, args ...any) {
		report.Warnings = append(report.Warnings, fmt.Sprintf(format, args...))
		if critical {
			report.Critical = true
		}
	}

	checkPurchaseAmount(rec, warn)
	checkFilenameAddress(rec, filename, warn)
	checkCompleteness(rec, warn)

	if rec.IsEmpty("buyers") {
		warn(false, "buyers not extracted")
	}
	if rec.IsEmpty("para3_option_checked") {
		warn(false, "para3_option_checked not extracted")
	}

	report.Valid = !report.Critical
	return report
}

// checkPurchaseAmount enforces the paragraph-3 invariant: exactly one of
// purchase_price / cash_amount is a positive number. Having only one set is
// the correct state, not an extraction gap.
func checkPurchaseAmount(rec Record, warn func(bool, string, ...any)) {
	price, hasPrice := rec.Number("purchase_price")
	cash, hasCash := rec.Number("cash_amount")
	hasPrice = hasPrice && price > 0
	hasCash = hasCash && cash > 0

	ptype := constants.PurchaseTypeFromPara3(rec.String("para3_option_checked"))

	switch {
	case hasPrice && hasCash:
		warn(true, "both purchase_price and cash_amount are set (type %s); exactly one must be", ptype)
	case !hasPrice && !hasCash:
		warn(true, "neither purchase_price nor cash_amount is a positive number (type %s)", ptype)
	case ptype == constants.PurchaseCash && !hasCash:
		warn(true, "para3 option 3C (cash) checked but cash_amount is not set")
	case (ptype == constants.PurchaseFinanced || ptype == constants.PurchaseLoanAssumption) && !hasPrice:
		warn(true, "para3 option %s checked but purchase_price is not set", rec.String("para3_option_checked"))
	}
}

// checkFilenameAddress guards against results bound to the wrong document:
// scanned contracts are filed under the property address, so the leading
// street number in the filename should show up in the extracted address.
func checkFilenameAddress(rec Record, filename string, warn func(bool, string, ...any)) {
	number, token := filenameHints(filename)
	if number == "" {
		warn(false, "no street number derivable from filename %q; address cross-check skipped", filepath.Base(filename))
		return
	}

	address := strings.ToLower(rec.String("property_address"))
	if !strings.Contains(address, number) {
		warn(true, "filename street number %q not found in extracted address %q; possibly wrong document", number, rec.String("property_address"))
		return
	}
	if token != "" && !strings.Contains(address, token) {
		warn(false, "filename token %q not found in extracted address", token)
	}
}

// filenameHints pulls a leading street number and the first non-stopword
// alphabetic token out of the filename base.
func filenameHints(filename string) (number, token string) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)

	if m := leadingNumberRe.FindString(base); m != "" {
		number = m
	}

	fields := strings.FieldsFunc(base, func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := filenameStopwords[f]; stop {
			continue
		}
		token = f
		break
	}
	return number, token
}

func checkCompleteness(rec Record, warn func(bool, string, ...any)) {
	total := len(constants.ExpectedFields)
	filled := 0
	for _, f := range constants.ExpectedFields {
		if !rec.IsEmpty(f) {
			filled++
		}
	}
	ratio := float64(filled) / float64(total)
	if ratio < 0.5 {
		warn(false, "low extraction completeness: %d/%d fields (%.0f%%)", filled, total, ratio*100)
	}
}
