package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded nationwide and commute runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		mode, _ := cmd.Flags().GetString("mode")
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, store.RunFilter{Mode: model.RunMode(mode), Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, runs)
		}
		formatRuns(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a run and its state ranking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		ranked, err := st.RunStates(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, struct {
				*model.Run
				States []model.StateAffordability `json:"states"`
			}{run, ranked})
		}

		fmt.Fprintf(os.Stdout, "Run %s (%s) at %s\n", run.ID, run.Mode, run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(os.Stdout, "Max price %s over %s ZIPs\n\n", moneyPtr(run.MaxPrice), count(run.ZipCount))
		formatStates(os.Stdout, ranked)
		return nil
	},
}

func formatRuns(w io.Writer, runs []model.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMode\tCreated\tIncome\tMax Price\tZIPs\tStates")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Mode, r.CreatedAt.Format("2006-01-02 15:04"), moneyPtr(r.Inputs.AnnualIncome),
			moneyPtr(r.MaxPrice), count(r.ZipCount), r.StateCount)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("mode", "", "filter by mode (nationwide or commute)")
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsListCmd.Flags().Bool("json", false, "print JSON")
	runsShowCmd.Flags().Bool("json", false, "print JSON")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
