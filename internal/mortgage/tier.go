package mortgage

import "github.com/sells-group/zipafford/internal/model"

// Cash-flow thresholds applied when discretionary spending is included.
const (
	minMonthlyCashFlow    = 500.0 // dollars left after housing, debts and spending
	affordableCashFlowPct = 0.15  // below this an affordable home becomes a stretch
	stretchCashFlowPct    = 0.25  // below this a stretch home becomes unaffordable
)

// CashFlow is what remains of gross monthly income after housing, debts and spending.
type CashFlow struct {
	Remaining float64
	Pct       float64
}

// DowngradeRule moves a tier down given the household's cash flow.
// Rules run in order and each sees the tier left by the previous one.
type DowngradeRule struct {
	Name  string
	Apply func(current model.Tier, cf CashFlow) model.Tier
}

// CashFlowRules is the ordered downgrade cascade. The stretch rule runs after
// the affordable rule so one pass can take affordable to unaffordable.
var CashFlowRules = []DowngradeRule{
	{
		Name: "negative_cash_flow",
		Apply: func(current model.Tier, cf CashFlow) model.Tier {
			if cf.Remaining < 0 {
				return model.TierUnaffordable
			}
			return current
		},
	},
	{
		Name: "below_cash_floor",
		Apply: func(current model.Tier, cf CashFlow) model.Tier {
			if cf.Remaining < minMonthlyCashFlow {
				return model.TierUnaffordable
			}
			return current
		},
	},
	{
		Name: "thin_affordable_margin",
		Apply: func(current model.Tier, cf CashFlow) model.Tier {
			if cf.Pct < affordableCashFlowPct && current == model.TierAffordable {
				return model.TierStretch
			}
			return current
		},
	},
	{
		Name: "thin_stretch_margin",
		Apply: func(current model.Tier, cf CashFlow) model.Tier {
			if cf.Pct < stretchCashFlowPct && current == model.TierStretch {
				return model.TierUnaffordable
			}
			return current
		},
	},
}

// tierRank orders the classified tiers from best to worst.
var tierRank = map[model.Tier]int{
	model.TierAffordable:   0,
	model.TierStretch:      1,
	model.TierUnaffordable: 2,
}

// worse returns whichever of a and b ranks lower, so a rule can never upgrade.
func worse(a, b model.Tier) model.Tier {
	if tierRank[b] > tierRank[a] {
		return b
	}
	return a
}

// BaseTier classifies a DTI ratio against the front and back thresholds.
func BaseTier(dtiRatio float64, in model.AffordabilityInputs) model.Tier {
	switch {
	case dtiRatio <= in.FrontDTIPct/100:
		return model.TierAffordable
	case dtiRatio <= in.BackDTIPct/100:
		return model.TierStretch
	default:
		return model.TierUnaffordable
	}
}

// ApplyCashFlow folds rules over the tier in order.
func ApplyCashFlow(tier model.Tier, cf CashFlow, rules []DowngradeRule) model.Tier {
	for _, r := range rules {
		tier = worse(tier, r.Apply(tier, cf))
	}
	return tier
}

// Tier classifies homePrice for the profile. A nil price or an unusable
// income is TierUnknown. Spending, when included and positive, can only
// downgrade the DTI-based tier.
func Tier(homePrice *float64, in model.AffordabilityInputs) model.Tier {
	if homePrice == nil {
		return model.TierUnknown
	}
	if _, ok := in.Income(); !ok {
		return model.TierUnknown
	}

	gross := in.GrossMonthlyIncome()
	totalDebts := FullMonthlyPayment(*homePrice, in).Total + in.MonthlyDebts
	tier := BaseTier(totalDebts/gross, in)

	if in.IncludeSpending && in.MonthlySpending > 0 {
		remaining := gross - totalDebts - in.MonthlySpending
		tier = ApplyCashFlow(tier, CashFlow{Remaining: remaining, Pct: remaining / gross}, CashFlowRules)
	}
	return tier
}
