package llm

import (
	"strconv"
	"strings"

	"github.com/arkclose/netsheet-tracker/constants"
)

// BuildSystemPrompt produces the extraction instructions for one page.
// Wording stays generic; the JSON schema carries the real constraints.
func BuildSystemPrompt(role constants.PageRole) string {
	parts := []string{
		"You are a real-estate purchase contract reader.",
		"You are shown one scanned page of an Arkansas residential purchase agreement.",
		"Return ONLY JSON that matches the JSON Schema provided.",
		"Extract only what is visible on this page; omit fields this page does not show.",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Dollar amounts are plain numbers without symbols or separators.",
		"For checkbox fields report which option is actually marked, not the printed choices.",
		"Never output null. If a field is not present, omit it.",
	}

	switch role {
	case constants.RoleFinancing:
		parts = append(parts,
			"Focus on paragraph 3: which of 3A (financed), 3B (loan assumption), 3C (cash) is checked,",
			"and the corresponding purchase_price or cash_amount.")
	case constants.RoleCosts:
		parts = append(parts,
			"Focus on earnest money, non-refundable deposits, seller concessions, and buyer agency fees.")
	case constants.RoleSignatures:
		parts = append(parts,
			"Focus on the signature block: contract, acceptance, and closing dates plus the selling agent's details.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt gives the model the document context for one page.
func BuildUserPrompt(req PageRequest) string {
	var b strings.Builder
	b.WriteString("Document: ")
	b.WriteString(req.FilenameHint)
	b.WriteString("\nPage: ")
	b.WriteString(strconv.Itoa(req.PageNumber))
	b.WriteString("\nPage role: ")
	b.WriteString(string(req.Role))
	b.WriteString("\n\nRead the attached page image and return the JSON object.")
	return b.String()
}
