package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/zipafford/internal/mortgage"
	"github.com/sells-group/zipafford/internal/report"
)

var affordCmd = &cobra.Command{
	Use:   "afford",
	Short: "Show the maximum affordable price for a profile",
	Long:  "Prints the DTI-based maximum home price, the effective price after any manual override, and the monthly payment breakdown. With --price, classifies that price; with --zip, prices one ZIP's median home.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		in, err := resolveInputs(ctx, cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		if zip, _ := cmd.Flags().GetString("zip"); zip != "" {
			env, err := initEnv(ctx, false)
			if err != nil {
				return err
			}
			defer env.Close()

			d, err := env.Pipeline.ZipDetail(ctx, in, zip)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(os.Stdout, d)
			}
			formatZipDetail(os.Stdout, *d)
			return nil
		}

		summary := report.Summarize(in)
		var check *report.PriceCheck
		if cmd.Flags().Changed("price") {
			price, _ := cmd.Flags().GetFloat64("price")
			c := report.CheckPrice(price, in)
			check = &c
		}

		if asJSON {
			return writeJSON(os.Stdout, struct {
				report.Affordability
				Check *report.PriceCheck `json:"check,omitempty"`
			}{summary, check})
		}
		formatAffordability(os.Stdout, summary)
		if check != nil {
			fmt.Fprintln(os.Stdout)
			formatPriceCheck(os.Stdout, *check)
		}
		return nil
	},
}

func formatAffordability(w io.Writer, a report.Affordability) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Max home price (DTI):\t%s\n", money(a.MaxHomePrice))
	label := "Effective max price:"
	if a.ManualOverride {
		label = "Effective max price (manual):"
	}
	fmt.Fprintf(tw, "%s\t%s\n", label, moneyPtr(a.EffectiveMaxPrice))
	if a.Payment != nil {
		formatPayment(tw, *a.Payment)
	} else {
		fmt.Fprintln(tw, "Enter an annual income (--income) to compute a price.")
	}
	tw.Flush() //nolint:errcheck
}

func formatPayment(tw *tabwriter.Writer, p mortgage.PaymentBreakdown) {
	fmt.Fprintf(tw, "  Principal & interest:\t%s\n", money(p.Principal))
	fmt.Fprintf(tw, "  Property tax:\t%s\n", money(p.Tax))
	fmt.Fprintf(tw, "  Insurance:\t%s\n", money(p.Insurance))
	if p.PMI > 0 {
		fmt.Fprintf(tw, "  PMI:\t%s\n", money(p.PMI))
	}
	if p.HOA > 0 {
		fmt.Fprintf(tw, "  HOA:\t%s\n", money(p.HOA))
	}
	fmt.Fprintf(tw, "  Monthly total:\t%s\n", money(p.Total))
}

func formatPriceCheck(w io.Writer, c report.PriceCheck) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "At %s:\t%s\n", money(c.Price), tierLabel(c.Tier))
	if c.DTI > 0 {
		fmt.Fprintf(tw, "  Total DTI:\t%s\n", printer.Sprintf("%.1f%%", c.DTI*100))
	}
	formatPayment(tw, c.Payment)
	tw.Flush() //nolint:errcheck
}

func formatZipDetail(w io.Writer, d report.EntryDetail) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ZIP %s\t%s, %s\n", d.Zip, d.Name, d.State)
	fmt.Fprintf(tw, "Tier:\t%s\n", tierLabel(d.Tier))
	fmt.Fprintf(tw, "Median home value:\t%s\n", moneyPtr(d.MedianHomeValue))
	fmt.Fprintf(tw, "Median rent:\t%s\n", moneyPtr(d.MedianRent))
	if d.Payment != nil {
		formatPayment(tw, *d.Payment)
	}
	if d.RentToOwn != nil {
		fmt.Fprintf(tw, "Own vs rent:\t%s\n", printer.Sprintf("%.2fx", *d.RentToOwn))
	}
	tw.Flush() //nolint:errcheck
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	addInputFlags(affordCmd)
	affordCmd.Flags().Float64("price", 0, "classify this home price")
	affordCmd.Flags().String("zip", "", "price the median home in this ZIP")
	affordCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.AddCommand(affordCmd)
}
