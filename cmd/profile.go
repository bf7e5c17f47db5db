package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved affordability profiles",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the resolved inputs under a name",
	Long:  "Resolves inputs the same way the data commands do (config defaults, --preset, --profile, flags) and stores them. An existing profile with the same name is replaced.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		in, err := resolveInputs(ctx, cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := st.SaveProfile(ctx, args[0], in)
		if err != nil {
			return err
		}
		zap.L().Info("profile saved", zap.String("name", p.Name), zap.String("id", p.ID))
		fmt.Fprintf(os.Stdout, "Saved profile %q\n", p.Name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		profiles, err := st.ListProfiles(ctx)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, profiles)
		}
		formatProfiles(os.Stdout, profiles)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved profile and its affordability",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := st.GetProfile(ctx, args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, p)
		}
		fmt.Fprintf(os.Stdout, "%s (updated %s)\n\n", p.Name, p.UpdatedAt.Format("2006-01-02 15:04"))
		formatInputs(os.Stdout, p.Inputs)
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteProfile(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted profile %q\n", args[0])
		return nil
	},
}

func formatProfiles(w io.Writer, profiles []model.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No saved profiles.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tIncome\tDown\tRate\tTerm\tUpdated")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%.2f%%\t%dy\t%s\n",
			p.Name, moneyPtr(p.Inputs.AnnualIncome), p.Inputs.DownPaymentPct, p.Inputs.InterestRate,
			p.Inputs.LoanTermYears, p.UpdatedAt.Format("2006-01-02"))
	}
	tw.Flush() //nolint:errcheck
}

func formatInputs(w io.Writer, in model.AffordabilityInputs) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Annual income\t%s\n", moneyPtr(in.AnnualIncome))
	fmt.Fprintf(tw, "Down payment\t%.1f%%\n", in.DownPaymentPct)
	fmt.Fprintf(tw, "Interest rate\t%.2f%%\n", in.InterestRate)
	fmt.Fprintf(tw, "Loan term\t%d years\n", in.LoanTermYears)
	fmt.Fprintf(tw, "Property tax\t%.2f%%\n", in.PropertyTaxRate)
	fmt.Fprintf(tw, "Insurance\t%s/yr\n", money(in.AnnualInsurance))
	fmt.Fprintf(tw, "Monthly debts\t%s\n", money(in.MonthlyDebts))
	fmt.Fprintf(tw, "HOA\t%s\n", money(in.HOAMonthly))
	fmt.Fprintf(tw, "DTI limits\t%.0f%% / %.0f%%\n", in.FrontDTIPct, in.BackDTIPct)
	if in.IncludeSpending {
		fmt.Fprintf(tw, "Monthly spending\t%s\n", money(in.MonthlySpending))
	}
	if in.UseManualMaxPrice {
		fmt.Fprintf(tw, "Manual max price\t%s\n", moneyPtr(in.ManualMaxPrice))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	addInputFlags(profileSaveCmd)
	profileListCmd.Flags().Bool("json", false, "print JSON")
	profileShowCmd.Flags().Bool("json", false, "print JSON")

	profileCmd.AddCommand(profileSaveCmd, profileListCmd, profileShowCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}
