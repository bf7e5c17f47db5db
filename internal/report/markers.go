// Package report assembles classified entries into map markers, per-ZIP
// payment details and spreadsheet exports.
package report

import "github.com/sells-group/zipafford/internal/model"

// BuildMarkers returns one marker per classified entry. Unknown tiers have no
// marker, so markers only ever carry affordable, stretch or unaffordable.
func BuildMarkers(entries []model.ClassifiedEntry) []model.ZipMarker {
	markers := make([]model.ZipMarker, 0, len(entries))
	for _, e := range entries {
		if e.Tier == model.TierUnknown {
			continue
		}
		markers = append(markers, model.ZipMarker{Lat: e.Lat, Lon: e.Lon, Zip: e.Zip, Tier: e.Tier})
	}
	return markers
}

// VisibleMarkers applies the hide-unaffordable toggle to an already built
// marker list. The input is not modified.
func VisibleMarkers(markers []model.ZipMarker, hideUnaffordable bool) []model.ZipMarker {
	out := make([]model.ZipMarker, 0, len(markers))
	for _, m := range markers {
		if hideUnaffordable && m.Tier == model.TierUnaffordable {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CountTiers tallies markers by tier.
func CountTiers(markers []model.ZipMarker) map[model.Tier]int {
	counts := make(map[model.Tier]int, 3)
	for _, m := range markers {
		counts[m.Tier]++
	}
	return counts
}
