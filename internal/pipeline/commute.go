package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/report"
	"github.com/sells-group/zipafford/internal/states"
)

// CommuteResult is the affordability picture inside one commute zone.
type CommuteResult struct {
	RunID         string                     `json:"run_id,omitempty"`
	Affordability report.Affordability       `json:"affordability"`
	Stats         model.HousingStats         `json:"stats"`
	TierCounts    map[model.Tier]int         `json:"tier_counts"`
	States        []model.StateAffordability `json:"states"`
	Markers       []model.ZipMarker          `json:"markers"`
	HiddenCount   int                        `json:"hidden_count"`

	// AllMarkers is the full marker list before the visibility toggle.
	AllMarkers []model.ZipMarker `json:"-"`
}

// BuildCommute joins the zone, classifies it and applies the
// hide-unaffordable toggle to the finished marker list.
func BuildCommute(ds *dataset.Dataset, region dataset.Region, in model.AffordabilityInputs, hideUnaffordable bool) *CommuteResult {
	joined := dataset.JoinAffordable(region, ds, in)
	visible := report.VisibleMarkers(joined.Markers, hideUnaffordable)
	return &CommuteResult{
		Affordability: report.Summarize(in),
		Stats:         joined.Stats,
		TierCounts:    report.CountTiers(joined.Markers),
		States:        states.Aggregate(joined.Classified),
		Markers:       visible,
		HiddenCount:   len(joined.Markers) - len(visible),
		AllMarkers:    joined.Markers,
	}
}

// Toggle reapplies the visibility filter without reclassifying.
func (r *CommuteResult) Toggle(hideUnaffordable bool) {
	r.Markers = report.VisibleMarkers(r.AllMarkers, hideUnaffordable)
	r.HiddenCount = len(r.AllMarkers) - len(r.Markers)
}

// Commute loads the dataset and classifies every ZIP inside region.
func (p *Pipeline) Commute(ctx context.Context, region dataset.Region, in model.AffordabilityInputs, hideUnaffordable bool) (*CommuteResult, error) {
	in = in.Normalize()
	ds, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	res := BuildCommute(ds, region, in, hideUnaffordable)
	zap.L().Info("pipeline: commute zone classified",
		zap.Int("zip_count", res.Stats.ZipCount),
		zap.Int("marker_count", len(res.AllMarkers)),
		zap.Int("hidden_count", res.HiddenCount),
	)

	res.RunID = p.recordRun(ctx, model.Run{
		Mode:     model.RunModeCommute,
		Inputs:   in,
		MaxPrice: res.Affordability.EffectiveMaxPrice,
		ZipCount: res.Stats.ZipCount,
	}, res.States)
	return res, nil
}
