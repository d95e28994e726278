package domain

// InstallmentOffer is one way to split an amount into equal monthly payments.
// Values are plain float64: the merchant-facing collaborator owns rounding
// and display formatting, this package owns only the arithmetic.
type InstallmentOffer struct {
	Count      int
	UnitValue  float64
	TotalValue float64
	TaxApplied bool
}

// TaxSchedule maps an installment count to its surcharge percentage.
// Counts without an entry carry no tax.
type TaxSchedule map[int]float64

// Rate returns the tax percentage for the given installment count, 0 when absent
func (s TaxSchedule) Rate(count int) float64 {
	if s == nil {
		return 0
	}
	return s[count]
}

// InstallmentConfig holds the merchant preferences the calculator reads.
// Read-only at transaction time.
type InstallmentConfig struct {
	MaxInstallments        int
	MinimumOfferValue      float64
	InstallmentsWithoutTax int
	MinValueWithoutTax     float64
	TaxSchedule            TaxSchedule
}

// ComputeOffers returns the eligible installment offers for amount, in
// ascending installment count. Tax for a count is waived when its rate is
// zero or when the count is within the no-tax threshold and the amount meets
// the no-tax floor. Offers whose per-installment value falls below the
// minimum offer value are dropped; each count is evaluated independently, so
// suppressed counts leave no gaps in the returned slice.
func ComputeOffers(amount float64, cfg InstallmentConfig) []InstallmentOffer {
	offers := make([]InstallmentOffer, 0, cfg.MaxInstallments)

	for count := 1; count <= cfg.MaxInstallments; count++ {
		tax := cfg.TaxSchedule.Rate(count)

		var unit float64
		taxApplied := false
		if tax <= 0 || (count <= cfg.InstallmentsWithoutTax && amount >= cfg.MinValueWithoutTax) {
			unit = amount / float64(count)
		} else {
			unit = (amount + amount*tax/100) / float64(count)
			taxApplied = true
		}

		if unit < cfg.MinimumOfferValue {
			continue
		}

		offers = append(offers, InstallmentOffer{
			Count:      count,
			UnitValue:  unit,
			TotalValue: unit * float64(count),
			TaxApplied: taxApplied,
		})
	}

	return offers
}
