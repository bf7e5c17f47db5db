package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/report"
	"github.com/sells-group/zipafford/internal/states"
	"github.com/sells-group/zipafford/internal/stats"
)

// ErrUnknownState is returned for a drill-down on an abbreviation outside the
// 50 states, DC and PR.
var ErrUnknownState = errors.New("unknown state")

// NationwideResult is the state ranking for a profile.
type NationwideResult struct {
	RunID         string                     `json:"run_id,omitempty"`
	Affordability report.Affordability       `json:"affordability"`
	ZipCount      int                        `json:"zip_count"`
	TierCounts    map[model.Tier]int         `json:"tier_counts"`
	States        []model.StateAffordability `json:"states"`
	Meta          *model.DataMeta            `json:"meta,omitempty"`

	// Entries is every nationwide entry with its tier. Drill-downs filter this
	// list instead of re-joining the raw tables.
	Entries []model.ClassifiedEntry `json:"-"`
}

// BuildNationwide classifies every centroid-matched ZIP and ranks the states.
func BuildNationwide(ds *dataset.Dataset, in model.AffordabilityInputs) *NationwideResult {
	classified := dataset.Classify(ds.Nationwide(), in)
	return &NationwideResult{
		Affordability: report.Summarize(in),
		ZipCount:      len(classified),
		TierCounts:    report.CountTiers(report.BuildMarkers(classified)),
		States:        states.Aggregate(classified),
		Meta:          ds.Housing.Meta,
		Entries:       classified,
	}
}

// Nationwide loads the dataset and ranks every state for the profile.
func (p *Pipeline) Nationwide(ctx context.Context, in model.AffordabilityInputs) (*NationwideResult, error) {
	in = in.Normalize()
	ds, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := BuildNationwide(ds, in)
	zap.L().Info("pipeline: nationwide classified",
		zap.Int("zip_count", res.ZipCount),
		zap.Int("state_count", len(res.States)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	res.RunID = p.recordRun(ctx, model.Run{
		Mode:     model.RunModeNationwide,
		Inputs:   in,
		MaxPrice: res.Affordability.EffectiveMaxPrice,
		ZipCount: res.ZipCount,
	}, res.States)
	return res, nil
}

// StateDetailResult is one state's drill-down.
type StateDetailResult struct {
	State   states.State              `json:"state"`
	Summary *model.StateAffordability `json:"summary,omitempty"`
	Stats   model.HousingStats        `json:"stats"`
	Details []report.EntryDetail      `json:"details"`
	Markers []model.ZipMarker         `json:"markers"`
}

// BuildStateDetail filters an already classified nationwide result down to
// one state. Summary is nil when the state has no priced ZIP.
func BuildStateDetail(res *NationwideResult, abbr string, in model.AffordabilityInputs) (*StateDetailResult, error) {
	st, ok := states.Lookup(abbr)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownState, "pipeline: state %q", abbr)
	}

	var picked []model.ClassifiedEntry
	for _, e := range res.Entries {
		if e.State == st.Abbr {
			picked = append(picked, e)
		}
	}

	out := &StateDetailResult{
		State:   st,
		Stats:   states.DrillDown(res.Entries, st.Abbr, res.Meta),
		Details: make([]report.EntryDetail, 0, len(picked)),
		Markers: report.BuildMarkers(picked),
	}
	for _, e := range picked {
		out.Details = append(out.Details, report.Detail(e.HousingDataEntry, in))
	}
	for i := range res.States {
		if res.States[i].State == st.Abbr {
			summary := res.States[i]
			out.Summary = &summary
			break
		}
	}
	return out, nil
}

// StateDetail ranks nationwide and drills into one state. The drill-down is
// not recorded as a separate run.
func (p *Pipeline) StateDetail(ctx context.Context, in model.AffordabilityInputs, abbr string) (*StateDetailResult, error) {
	if _, ok := states.Lookup(abbr); !ok {
		return nil, eris.Wrapf(ErrUnknownState, "pipeline: state %q", abbr)
	}
	in = in.Normalize()
	ds, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildStateDetail(BuildNationwide(ds, in), abbr, in)
}

// SummaryStats is BuildStats over every nationwide entry.
func SummaryStats(res *NationwideResult) model.HousingStats {
	entries := make([]model.HousingDataEntry, len(res.Entries))
	for i, e := range res.Entries {
		entries[i] = e.HousingDataEntry
	}
	return stats.BuildStats(entries, res.Meta)
}
