package netsheet

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`-?\d+(?:,\d{3})*(?:\.\d+)?`)

// resolveFeeText turns contract free text like "3%", "3% of purchase price",
// "$1,500", or a bare "2.7" into a dollar amount. Percentages apply to the
// sales price. Agents routinely write a bare number for a percentage, so a
// bare value of 10 or less is read as a percent and anything larger as flat
// dollars. Unparseable or empty text resolves to zero.
func resolveFeeText(text string, salesPrice float64) float64 {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "none") || strings.EqualFold(text, "n/a") {
		return 0
	}

	m := numberRe.FindString(text)
	if m == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || value <= 0 {
		return 0
	}

	switch {
	case strings.Contains(text, "%"):
		return roundCents(salesPrice * value / 100)
	case strings.Contains(text, "$"):
		return roundCents(value)
	case value <= 10:
		return roundCents(salesPrice * value / 100)
	default:
		return roundCents(value)
	}
}
