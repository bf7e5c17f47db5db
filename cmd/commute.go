package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/zipafford/internal/fetcher"
	"github.com/sells-group/zipafford/internal/geo"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/pipeline"
)

var commuteCmd = &cobra.Command{
	Use:   "commute <isochrone.geojson>",
	Short: "Summarize affordability inside a commute zone",
	Long:  "Reads an isochrone polygon (GeoJSON file or URL), selects the ZIPs whose centroid falls inside it and reports housing stats and per-ZIP tiers.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		rc, err := fetcher.Open(ctx, env.Fetcher, args[0])
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		rc.Close() //nolint:errcheck
		if err != nil {
			return eris.Wrapf(err, "read isochrone %s", args[0])
		}
		iso, err := geo.ParseIsochrone(data)
		if err != nil {
			return err
		}

		hide, _ := cmd.Flags().GetBool("hide-unaffordable")
		res, err := env.Pipeline.Commute(ctx, iso, in, hide)
		if err != nil {
			return err
		}

		if err := exportResults(cmd, res.States, classifiedFromMarkers(res)); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(os.Stdout, res)
		}
		formatCommute(os.Stdout, res)
		return nil
	},
}

// classifiedFromMarkers pairs the zone's entries with their marker tier.
// Entries without a marker are unknown.
func classifiedFromMarkers(res *pipeline.CommuteResult) []model.ClassifiedEntry {
	tiers := make(map[string]model.Tier, len(res.AllMarkers))
	for _, m := range res.AllMarkers {
		tiers[m.Zip] = m.Tier
	}
	out := make([]model.ClassifiedEntry, 0, len(res.Stats.Entries))
	for _, e := range res.Stats.Entries {
		tier, ok := tiers[e.Zip]
		if !ok {
			tier = model.TierUnknown
		}
		out = append(out, model.ClassifiedEntry{HousingDataEntry: e, Tier: tier})
	}
	return out
}

func formatCommute(w io.Writer, res *pipeline.CommuteResult) {
	s := res.Stats
	fmt.Fprintf(w, "%s ZIPs in zone\n", count(s.ZipCount))
	fmt.Fprintf(w, "Median home %s (range %s to %s)\n", moneyPtr(s.MedianHomeValue), moneyPtr(s.MinHomeValue), moneyPtr(s.MaxHomeValue))
	fmt.Fprintf(w, "Median rent %s (range %s to %s)\n", moneyPtr(s.MedianRent), moneyPtr(s.MinRent), moneyPtr(s.MaxRent))
	if res.Affordability.EffectiveMaxPrice != nil {
		fmt.Fprintf(w, "Max price %s: %s affordable, %s stretch, %s unaffordable\n",
			moneyPtr(res.Affordability.EffectiveMaxPrice),
			count(res.TierCounts[model.TierAffordable]),
			count(res.TierCounts[model.TierStretch]),
			count(res.TierCounts[model.TierUnaffordable]),
		)
	}
	if res.HiddenCount > 0 {
		fmt.Fprintf(w, "%s unaffordable ZIPs hidden\n", count(res.HiddenCount))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ZIP\tTier\tLat\tLon")
	for _, m := range res.Markers {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", m.Zip, tierLabel(m.Tier), m.Lat, m.Lon)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	addInputFlags(commuteCmd)
	commuteCmd.Flags().Bool("hide-unaffordable", false, "omit unaffordable ZIPs from the marker list")
	commuteCmd.Flags().String("xlsx", "", "write the zone's states and ZIPs to this workbook")
	commuteCmd.Flags().String("csv", "", "write the zone's state breakdown to this CSV")
	commuteCmd.Flags().String("zips-csv", "", "write the zone's ZIPs to this CSV")
	commuteCmd.Flags().Bool("json", false, "print JSON")
	commuteCmd.Flags().Bool("no-record", false, "do not record the run in the store")
	rootCmd.AddCommand(commuteCmd)
}
