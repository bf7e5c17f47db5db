// Package mortgage computes amortized payments, the maximum affordable home
// price, and the affordability tier of a price for a given financial profile.
//
// Every function here is total: missing or degenerate inputs produce 0, nil,
// or TierUnknown instead of an error.
package mortgage

import (
	"math"

	"github.com/sells-group/zipafford/internal/model"
)

const monthsPerYear = 12

// PMI is charged on the loan amount whenever the down payment is below the
// threshold. There is no phase-in: 19.99% down pays PMI, 20% does not.
const (
	pmiAnnualRate   = 0.007
	pmiThresholdPct = 20.0
)

// PaymentBreakdown is the full monthly housing cost of a home.
type PaymentBreakdown struct {
	Total     float64 `json:"total"`
	Principal float64 `json:"principal"`
	Tax       float64 `json:"tax"`
	Insurance float64 `json:"insurance"`
	PMI       float64 `json:"pmi"`
	HOA       float64 `json:"hoa"`
}

// MonthlyPayment returns the fixed-rate principal and interest payment.
// A non-positive principal yields 0; a non-positive rate falls back to
// straight-line repayment.
func MonthlyPayment(principal, annualRatePct float64, termYears int) float64 {
	if principal <= 0 {
		return 0
	}
	n := float64(termYears * monthsPerYear)
	if n <= 0 {
		return 0
	}
	if annualRatePct <= 0 {
		return principal / n
	}

	r := annualRatePct / 100 / monthsPerYear
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// LoanAmount returns the financed portion of homePrice.
func LoanAmount(homePrice float64, in model.AffordabilityInputs) float64 {
	return homePrice * (1 - in.DownPaymentPct/100)
}

// FullMonthlyPayment returns principal and interest plus tax, insurance, PMI and HOA.
func FullMonthlyPayment(homePrice float64, in model.AffordabilityInputs) PaymentBreakdown {
	loan := LoanAmount(homePrice, in)

	b := PaymentBreakdown{
		Principal: MonthlyPayment(loan, in.InterestRate, in.LoanTermYears),
		Tax:       homePrice * in.PropertyTaxRate / 100 / monthsPerYear,
		Insurance: in.AnnualInsurance / monthsPerYear,
		HOA:       in.HOAMonthly,
	}
	if in.DownPaymentPct < pmiThresholdPct {
		b.PMI = loan * pmiAnnualRate / monthsPerYear
	}
	b.Total = b.Principal + b.Tax + b.Insurance + b.PMI + b.HOA
	return b
}
