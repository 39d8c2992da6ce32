package llm

// BuildContractJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is passed to the vision model as a structured output
// constraint and used locally to validate each page's response. Every field
// is optional: a page legitimately sees only a slice of the contract.
func BuildContractJSONSchema() map[string]any {
	props := map[string]any{
		// identity
		"buyers":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"property_address": stringProp(),
		"property_type":    map[string]any{"type": "string", "enum": []string{"SINGLE_FAMILY", "MULTI_FAMILY", "CONDO", "TOWNHOUSE", "LAND", "OTHER"}},
		// transaction
		"purchase_type":        stringProp(),
		"para3_option_checked": map[string]any{"type": "string", "enum": []string{"3A", "3B", "3C"}},
		"purchase_price":       numberProp(),
		"cash_amount":          numberProp(),
		"loan_type":            stringProp(),
		// cost related
		"earnest_money_held":    stringProp(),
		"earnest_money_amount":  numberProp(),
		"non_refundable":        map[string]any{"type": "string", "enum": []string{"yes", "no"}},
		"non_refundable_amount": numberProp(),
		"seller_concessions":    stringProp(),
		"buyer_agency_fee":      stringProp(),
		// terms
		"title_option":          stringProp(),
		"survey_option":         stringProp(),
		"survey_paid_by":        stringProp(),
		"contingency":           stringProp(),
		"contingency_address":   stringProp(),
		"home_warranty":         map[string]any{"type": "string", "enum": []string{"yes", "no"}},
		"home_warranty_amount":  numberProp(),
		"home_warranty_paid_by": stringProp(),
		"inspection_option":     stringProp(),
		"wood_infestation":      stringProp(),
		"termite_option":        stringProp(),
		"lead_paint_option":     stringProp(),
		// dates
		"contract_date":   dateProp(),
		"closing_date":    dateProp(),
		"acceptance_date": dateProp(),
		// free text
		"para13_items_included": stringProp(),
		"para13_items_excluded": stringProp(),
		"additional_terms":      stringProp(),
		// agent info
		"selling_agent_name":    stringProp(),
		"selling_firm_name":     stringProp(),
		"selling_agent_license": stringProp(),
		"selling_agent_email":   stringProp(),
		"selling_agent_phone":   stringProp(),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func numberProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}

func dateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}
