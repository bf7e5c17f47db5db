// Package model defines the housing, affordability, and run types shared across packages.
package model

// Loan terms offered by the calculator.
const (
	LoanTerm15 = 15
	LoanTerm30 = 30
)

// Down payment bounds accepted from user input (percent of price).
const (
	MinDownPaymentPct = 3.0
	MaxDownPaymentPct = 50.0
)

// AffordabilityInputs is the user's financial profile. Percentage fields hold
// plain percentages: 6.5 means 6.5%, not 0.065.
type AffordabilityInputs struct {
	AnnualIncome      *float64 `json:"annual_income" yaml:"annual_income" mapstructure:"annual_income"`
	DownPaymentPct    float64  `json:"down_payment_pct" yaml:"down_payment_pct" mapstructure:"down_payment_pct"`
	InterestRate      float64  `json:"interest_rate" yaml:"interest_rate" mapstructure:"interest_rate"`
	LoanTermYears     int      `json:"loan_term_years" yaml:"loan_term_years" mapstructure:"loan_term_years"`
	PropertyTaxRate   float64  `json:"property_tax_rate" yaml:"property_tax_rate" mapstructure:"property_tax_rate"`
	AnnualInsurance   float64  `json:"annual_insurance" yaml:"annual_insurance" mapstructure:"annual_insurance"`
	MonthlyDebts      float64  `json:"monthly_debts" yaml:"monthly_debts" mapstructure:"monthly_debts"`
	HOAMonthly        float64  `json:"hoa_monthly" yaml:"hoa_monthly" mapstructure:"hoa_monthly"`
	FrontDTIPct       float64  `json:"front_dti_pct" yaml:"front_dti_pct" mapstructure:"front_dti_pct"`
	BackDTIPct        float64  `json:"back_dti_pct" yaml:"back_dti_pct" mapstructure:"back_dti_pct"`
	MonthlySpending   float64  `json:"monthly_spending" yaml:"monthly_spending" mapstructure:"monthly_spending"`
	IncludeSpending   bool     `json:"include_spending" yaml:"include_spending" mapstructure:"include_spending"`
	ManualMaxPrice    *float64 `json:"manual_max_price" yaml:"manual_max_price" mapstructure:"manual_max_price"`
	UseManualMaxPrice bool     `json:"use_manual_max_price" yaml:"use_manual_max_price" mapstructure:"use_manual_max_price"`
}

// DefaultInputs returns the calculator's starting profile. Income is left unset.
func DefaultInputs() AffordabilityInputs {
	return AffordabilityInputs{
		DownPaymentPct:  20,
		InterestRate:    6.5,
		LoanTermYears:   LoanTerm30,
		PropertyTaxRate: 1.1,
		AnnualInsurance: 1500,
		FrontDTIPct:     28,
		BackDTIPct:      36,
	}
}

// Income returns the annual income and whether it is usable (set and positive).
func (in AffordabilityInputs) Income() (float64, bool) {
	if in.AnnualIncome == nil || *in.AnnualIncome <= 0 {
		return 0, false
	}
	return *in.AnnualIncome, true
}

// GrossMonthlyIncome returns annual income / 12, or 0 when income is unusable.
func (in AffordabilityInputs) GrossMonthlyIncome() float64 {
	income, ok := in.Income()
	if !ok {
		return 0
	}
	return income / 12
}

// Normalize clamps user-editable fields into the ranges the calculator offers.
// Down payment is held to [3, 50] and the loan term to 15 or 30 years.
func (in AffordabilityInputs) Normalize() AffordabilityInputs {
	out := in
	if out.DownPaymentPct < MinDownPaymentPct {
		out.DownPaymentPct = MinDownPaymentPct
	}
	if out.DownPaymentPct > MaxDownPaymentPct {
		out.DownPaymentPct = MaxDownPaymentPct
	}
	if out.LoanTermYears != LoanTerm15 {
		out.LoanTermYears = LoanTerm30
	}
	return out
}

// Clone returns a copy that shares no pointers with in, so decoding onto the
// copy never writes through to the original.
func (in AffordabilityInputs) Clone() AffordabilityInputs {
	out := in
	if in.AnnualIncome != nil {
		out.AnnualIncome = Float64(*in.AnnualIncome)
	}
	if in.ManualMaxPrice != nil {
		out.ManualMaxPrice = Float64(*in.ManualMaxPrice)
	}
	return out
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
