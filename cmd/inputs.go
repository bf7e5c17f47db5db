package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/zipafford/internal/config"
	"github.com/sells-group/zipafford/internal/model"
)

// inputFlag maps a CLI flag onto one AffordabilityInputs field.
type inputFlag struct {
	name  string
	usage string
	apply func(in *model.AffordabilityInputs, v float64)
}

var inputFlags = []inputFlag{
	{"income", "annual gross household income ($)", func(in *model.AffordabilityInputs, v float64) { in.AnnualIncome = model.Float64(v) }},
	{"down", "down payment (% of price, 3-50)", func(in *model.AffordabilityInputs, v float64) { in.DownPaymentPct = v }},
	{"rate", "mortgage interest rate (%)", func(in *model.AffordabilityInputs, v float64) { in.InterestRate = v }},
	{"term", "loan term in years (15 or 30)", func(in *model.AffordabilityInputs, v float64) { in.LoanTermYears = int(v) }},
	{"tax-rate", "annual property tax (% of price)", func(in *model.AffordabilityInputs, v float64) { in.PropertyTaxRate = v }},
	{"insurance", "annual homeowners insurance ($)", func(in *model.AffordabilityInputs, v float64) { in.AnnualInsurance = v }},
	{"debts", "other monthly debt payments ($)", func(in *model.AffordabilityInputs, v float64) { in.MonthlyDebts = v }},
	{"hoa", "monthly HOA dues ($)", func(in *model.AffordabilityInputs, v float64) { in.HOAMonthly = v }},
	{"front-dti", "front-end DTI limit (%)", func(in *model.AffordabilityInputs, v float64) { in.FrontDTIPct = v }},
	{"back-dti", "back-end DTI limit (%)", func(in *model.AffordabilityInputs, v float64) { in.BackDTIPct = v }},
	{"spending", "monthly discretionary spending ($); > 0 enables the cash-flow check", func(in *model.AffordabilityInputs, v float64) {
		in.MonthlySpending = v
		in.IncludeSpending = v > 0
	}},
	{"max-price", "manual maximum price ($); > 0 overrides the computed price", func(in *model.AffordabilityInputs, v float64) {
		in.ManualMaxPrice = model.Float64(v)
		in.UseManualMaxPrice = v > 0
	}},
}

// addInputFlags registers the profile flags on cmd.
func addInputFlags(cmd *cobra.Command) {
	for _, f := range inputFlags {
		cmd.Flags().Float64(f.name, 0, f.usage)
	}
	cmd.Flags().String("profile", "", "start from a saved profile")
	cmd.Flags().String("preset", "", "start from a preset in profiles.presets_path")
}

// applyInputFlags overlays only the flags the user set.
func applyInputFlags(cmd *cobra.Command, in model.AffordabilityInputs) (model.AffordabilityInputs, error) {
	for _, f := range inputFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(f.name)
		if err != nil {
			return in, eris.Wrapf(err, "flag --%s", f.name)
		}
		f.apply(&in, v)
	}
	return in, nil
}

// resolveInputs builds the profile for a command: config defaults, then a
// preset or saved profile, then explicit flags.
func resolveInputs(ctx context.Context, cmd *cobra.Command) (model.AffordabilityInputs, error) {
	in := cfg.Defaults

	if name, _ := cmd.Flags().GetString("preset"); name != "" {
		if cfg.Profiles.PresetsPath == "" {
			return in, eris.New("--preset needs profiles.presets_path")
		}
		presets, err := config.LoadPresets(cfg.Profiles.PresetsPath, in)
		if err != nil {
			return in, err
		}
		p, ok := config.FindPreset(presets, name)
		if !ok {
			return in, eris.Errorf("preset %q not found", name)
		}
		in = p.Inputs
	}

	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		st, err := openStore(ctx)
		if err != nil {
			return in, err
		}
		defer st.Close() //nolint:errcheck
		p, err := st.GetProfile(ctx, name)
		if err != nil {
			return in, err
		}
		in = p.Inputs
	}

	in, err := applyInputFlags(cmd, in)
	if err != nil {
		return in, err
	}
	return in.Normalize(), nil
}
