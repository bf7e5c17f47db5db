package mortgage

import (
	"math"

	"github.com/sells-group/zipafford/internal/model"
)

// The solver bisects [0, income*solverIncomeMultiple] a fixed number of times.
// 50 halvings of a range below $10M leave an interval far under one cent.
const (
	solverIterations     = 50
	solverIncomeMultiple = 10
)

// MaxHomePrice returns the highest price, rounded to the dollar, whose full
// monthly payment fits the front-end DTI budget after existing debts.
//
// Only traditional DTI is used here; monthly spending affects the tier, not
// the budget. Tax and PMI scale with price, so the price is found by
// bisection against the monotonic FullMonthlyPayment total.
func MaxHomePrice(in model.AffordabilityInputs) float64 {
	income, ok := in.Income()
	if !ok {
		return 0
	}

	maxMonthly := income / monthsPerYear * in.FrontDTIPct / 100
	available := maxMonthly - in.MonthlyDebts
	if available <= 0 {
		return 0
	}

	lo, hi := 0.0, income*solverIncomeMultiple
	for range solverIterations {
		mid := (lo + hi) / 2
		if FullMonthlyPayment(mid, in).Total <= available {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Round((lo + hi) / 2)
}

// EffectiveMaxPrice returns the manual override when enabled and positive,
// nil when there is no usable income, and MaxHomePrice otherwise.
func EffectiveMaxPrice(in model.AffordabilityInputs) *float64 {
	if in.UseManualMaxPrice && in.ManualMaxPrice != nil && *in.ManualMaxPrice > 0 {
		return model.Float64(*in.ManualMaxPrice)
	}
	if _, ok := in.Income(); !ok {
		return nil
	}
	return model.Float64(MaxHomePrice(in))
}
