package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/pipeline"
	"github.com/sells-group/zipafford/internal/report"
)

var nationwideCmd = &cobra.Command{
	Use:   "nationwide",
	Short: "Rank states by share of affordable ZIPs",
	Long:  "Classifies every ZIP with a centroid and ranks states by the share of priced ZIPs that are affordable or a stretch. --state drills into one state.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		in, err := resolveInputs(ctx, cmd)
		if err != nil {
			return err
		}
		noRecord, _ := cmd.Flags().GetBool("no-record")
		env, err := initEnv(ctx, !noRecord)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Nationwide(ctx, in)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		if abbr, _ := cmd.Flags().GetString("state"); abbr != "" {
			detail, err := pipeline.BuildStateDetail(res, abbr, in)
			if err != nil {
				return err
			}
			if err := exportResults(cmd, res.States, entriesOf(res.Entries, detail.State.Abbr)); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(os.Stdout, detail)
			}
			formatStateDetail(os.Stdout, detail)
			return nil
		}

		if err := exportResults(cmd, res.States, res.Entries); err != nil {
			return err
		}
		if asJSON {
			return writeJSON(os.Stdout, res)
		}
		formatNationwide(os.Stdout, res)
		return nil
	},
}

func entriesOf(entries []model.ClassifiedEntry, abbr string) []model.ClassifiedEntry {
	var out []model.ClassifiedEntry
	for _, e := range entries {
		if e.State == abbr {
			out = append(out, e)
		}
	}
	return out
}

// exportResults writes the --xlsx and --csv files when requested.
func exportResults(cmd *cobra.Command, states []model.StateAffordability, entries []model.ClassifiedEntry) error {
	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteXLSX(w, states, entries) }); err != nil {
			return err
		}
		zap.L().Info("wrote workbook", zap.String("path", path), zap.Int("state_count", len(states)))
	}
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteStatesCSV(w, states) }); err != nil {
			return err
		}
		zap.L().Info("wrote states csv", zap.String("path", path))
	}
	if path, _ := cmd.Flags().GetString("zips-csv"); path != "" {
		if err := writeFile(path, func(w io.Writer) error { return report.WriteEntriesCSV(w, entries) }); err != nil {
			return err
		}
		zap.L().Info("wrote zips csv", zap.String("path", path), zap.Int("zip_count", len(entries)))
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func formatNationwide(w io.Writer, res *pipeline.NationwideResult) {
	if res.Affordability.EffectiveMaxPrice == nil {
		fmt.Fprintln(w, "No income set: every ZIP is unclassified. Pass --income.")
	} else {
		fmt.Fprintf(w, "Max price %s  |  %s ZIPs: %s affordable, %s stretch, %s unaffordable\n",
			moneyPtr(res.Affordability.EffectiveMaxPrice),
			count(res.ZipCount),
			count(res.TierCounts[model.TierAffordable]),
			count(res.TierCounts[model.TierStretch]),
			count(res.TierCounts[model.TierUnaffordable]),
		)
	}
	if res.Meta != nil {
		fmt.Fprintf(w, "Home values as of %s, rents as of %s\n", res.Meta.ZHVIDate, res.Meta.ZORIDate)
	}
	if res.RunID != "" {
		fmt.Fprintf(w, "Run %s\n", res.RunID)
	}
	fmt.Fprintln(w)
	formatStates(w, res.States)
}

func formatStates(w io.Writer, states []model.StateAffordability) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tState\tZIPs\tAfford\tStretch\tUnafford\t% Afford\tMedian Home\tMedian Rent\t")
	for i, s := range states {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1, s.StateName, count(s.TotalZips), count(s.AffordableCount), count(s.StretchCount),
			count(s.UnaffordableCount), pct(s.PctAffordable), moneyPtr(s.MedianHomeValue), moneyPtr(s.MedianRent))
	}
	tw.Flush() //nolint:errcheck
}

func formatStateDetail(w io.Writer, d *pipeline.StateDetailResult) {
	fmt.Fprintf(w, "%s (%s)\n", d.State.Name, d.State.Abbr)
	if d.Summary != nil {
		fmt.Fprintf(w, "%s of %s priced ZIPs affordable or stretch\n", pct(d.Summary.PctAffordable), count(d.Summary.TotalZips))
	}
	fmt.Fprintf(w, "%s ZIPs, median home %s (range %s to %s), median rent %s\n\n",
		count(d.Stats.ZipCount), moneyPtr(d.Stats.MedianHomeValue),
		moneyPtr(d.Stats.MinHomeValue), moneyPtr(d.Stats.MaxHomeValue), moneyPtr(d.Stats.MedianRent))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ZIP\tName\tTier\tMedian Home\tMonthly\tMedian Rent")
	for _, e := range d.Details {
		monthly := "n/a"
		if e.Payment != nil {
			monthly = money(e.Payment.Total)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Zip, e.Name, tierLabel(e.Tier), moneyPtr(e.MedianHomeValue), monthly, moneyPtr(e.MedianRent))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	addInputFlags(nationwideCmd)
	nationwideCmd.Flags().String("state", "", "drill into one state (abbreviation)")
	nationwideCmd.Flags().String("xlsx", "", "write states and ZIPs to this workbook")
	nationwideCmd.Flags().String("csv", "", "write the state ranking to this CSV")
	nationwideCmd.Flags().String("zips-csv", "", "write classified ZIPs to this CSV")
	nationwideCmd.Flags().Bool("json", false, "print JSON")
	nationwideCmd.Flags().Bool("no-record", false, "do not record the run in the store")
	rootCmd.AddCommand(nationwideCmd)
}
