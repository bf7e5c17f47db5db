package report

import (
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/mortgage"
)

// EntryDetail is a ZIP's tier together with what owning its median home would cost.
type EntryDetail struct {
	model.HousingDataEntry
	Tier model.Tier `json:"tier"`
	// Payment is the full monthly cost at the median home value; nil when unpriced.
	Payment *mortgage.PaymentBreakdown `json:"payment,omitempty"`
	// RentToOwn is Payment.Total / MedianRent; nil without both.
	RentToOwn *float64 `json:"rent_to_own,omitempty"`
}

// Detail prices an entry for the profile.
func Detail(e model.HousingDataEntry, in model.AffordabilityInputs) EntryDetail {
	d := EntryDetail{HousingDataEntry: e, Tier: mortgage.Tier(e.MedianHomeValue, in)}
	if e.MedianHomeValue == nil {
		return d
	}
	p := mortgage.FullMonthlyPayment(*e.MedianHomeValue, in)
	d.Payment = &p
	if e.MedianRent != nil && *e.MedianRent > 0 {
		ratio := p.Total / *e.MedianRent
		d.RentToOwn = &ratio
	}
	return d
}

// Affordability is the headline answer for a profile.
type Affordability struct {
	MaxHomePrice      float64                    `json:"max_home_price"`
	EffectiveMaxPrice *float64                   `json:"effective_max_price"`
	ManualOverride    bool                       `json:"manual_override"`
	Payment           *mortgage.PaymentBreakdown `json:"payment_at_max,omitempty"`
}

// Summarize computes the solver price, the effective price and its payment.
func Summarize(in model.AffordabilityInputs) Affordability {
	eff := mortgage.EffectiveMaxPrice(in)
	a := Affordability{
		MaxHomePrice:      mortgage.MaxHomePrice(in),
		EffectiveMaxPrice: eff,
		ManualOverride:    in.UseManualMaxPrice && in.ManualMaxPrice != nil && *in.ManualMaxPrice > 0,
	}
	if eff != nil {
		p := mortgage.FullMonthlyPayment(*eff, in)
		a.Payment = &p
	}
	return a
}

// PriceCheck is the tier and payment for one specific price.
type PriceCheck struct {
	Price   float64                   `json:"price"`
	Tier    model.Tier                `json:"tier"`
	Payment mortgage.PaymentBreakdown `json:"payment"`
	// DTI is (payment + debts) / gross monthly income; zero without income.
	DTI float64 `json:"dti"`
}

// CheckPrice classifies price for the profile.
func CheckPrice(price float64, in model.AffordabilityInputs) PriceCheck {
	p := mortgage.FullMonthlyPayment(price, in)
	c := PriceCheck{
		Price:   price,
		Tier:    mortgage.Tier(&price, in),
		Payment: p,
	}
	if gross := in.GrossMonthlyIncome(); gross > 0 {
		c.DTI = (p.Total + in.MonthlyDebts) / gross
	}
	return c
}
