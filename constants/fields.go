package constants

import "strings"

// PurchaseType is derived from which paragraph-3 option is checked on the
// contract: 3A financed, 3B loan assumption, 3C cash.
type PurchaseType string

const (
	PurchaseFinanced       PurchaseType = "FINANCED"
	PurchaseLoanAssumption PurchaseType = "LOAN_ASSUMPTION"
	PurchaseCash           PurchaseType = "CASH"
	PurchaseUnknown        PurchaseType = "UNKNOWN"
)

// PurchaseTypeFromPara3 maps a checked paragraph-3 option to a purchase type.
func PurchaseTypeFromPara3(option string) PurchaseType {
	switch strings.ToUpper(strings.TrimSpace(option)) {
	case "3A":
		return PurchaseFinanced
	case "3B":
		return PurchaseLoanAssumption
	case "3C":
		return PurchaseCash
	default:
		return PurchaseUnknown
	}
}

// ExpectedFields is the full set of fields the extractor is asked for.
// Completeness checks count non-empty values against this list.
var ExpectedFields = []string{
	// identity
	"buyers",
	"property_address",
	"property_type",
	// transaction
	"purchase_type",
	"para3_option_checked",
	"purchase_price",
	"cash_amount",
	"loan_type",
	// cost related
	"earnest_money_held",
	"earnest_money_amount",
	"non_refundable",
	"non_refundable_amount",
	"seller_concessions",
	"buyer_agency_fee",
	// terms
	"title_option",
	"survey_option",
	"survey_paid_by",
	"contingency",
	"contingency_address",
	"home_warranty",
	"home_warranty_amount",
	"home_warranty_paid_by",
	"inspection_option",
	"wood_infestation",
	"termite_option",
	"lead_paint_option",
	// dates
	"contract_date",
	"closing_date",
	"acceptance_date",
	// free text
	"para13_items_included",
	"para13_items_excluded",
	"additional_terms",
	// agent info
	"selling_agent_name",
	"selling_firm_name",
	"selling_agent_license",
	"selling_agent_email",
	"selling_agent_phone",
}

// PageRole hints which portion of the contract a page image shows so the
// extractor can focus its prompt.
type PageRole string

const (
	RoleGeneral    PageRole = "general"    // any page, full field sweep
	RoleFinancing  PageRole = "financing"  // paragraph 3 page
	RoleCosts      PageRole = "costs"      // earnest money / concessions / fees
	RoleSignatures PageRole = "signatures" // dates and agent block
)
