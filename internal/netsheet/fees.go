package netsheet

// FeeSchedule holds the standard closing figures. The zero value is never
// used; call DefaultFeeSchedule and override individual entries as needed.
// TODO: confirm the title insurance rate against the current title company
// rate card; 0.55% min $550 is the figure quoted for Benton County closings.
type FeeSchedule struct {
	ClosingFee         float64 // settlement/closing fee, seller side
	TitleSearch        float64
	TitleRecordingFees float64
	PestTransfer       float64 // termite transfer letter
	Survey             float64 // new survey when seller-paid
	TitleInsuranceRate float64 // owner's policy premium as fraction of price
	TitleInsuranceMin  float64
	TransferTaxRate    float64 // Arkansas real-property transfer tax, both halves
}

func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		ClosingFee:         400,
		TitleSearch:        300,
		TitleRecordingFees: 50,
		PestTransfer:       450,
		Survey:             550,
		TitleInsuranceRate: 0.0055,
		TitleInsuranceMin:  550,
		TransferTaxRate:    0.0033,
	}
}

// TitleInsurance prices the seller's share of the owner's policy premium by
// contract title option: A seller pays in full, B splits with the buyer,
// C buyer pays.
func (f FeeSchedule) TitleInsurance(option string, salesPrice float64) float64 {
	premium := salesPrice * f.TitleInsuranceRate
	if premium < f.TitleInsuranceMin {
		premium = f.TitleInsuranceMin
	}
	switch normalizeOption(option) {
	case "A":
		return roundCents(premium)
	case "B":
		return roundCents(premium / 2)
	default: // "C", unset, or unrecognized: buyer pays
		return 0
	}
}

// TaxStamps is the seller's half of the Arkansas transfer tax.
// Purchase price × 0.0033 ÷ 2.
func (f FeeSchedule) TaxStamps(salesPrice float64) float64 {
	return roundCents(salesPrice * f.TransferTaxRate / 2)
}
