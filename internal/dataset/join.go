package dataset

import (
	"slices"

	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/mortgage"
	"github.com/sells-group/zipafford/internal/report"
	"github.com/sells-group/zipafford/internal/stats"
)

// Region is an area that can test whether a point lies inside it.
// *geo.Isochrone satisfies it.
type Region interface {
	Contains(lat, lon float64) bool
}

func newEntry(c model.ZipCentroid, rec model.ZipRecord) model.HousingDataEntry {
	return model.HousingDataEntry{
		Zip:              c.Zip,
		Name:             rec.Name,
		State:            rec.State,
		Lat:              c.Lat,
		Lon:              c.Lon,
		MedianHomeValue:  rec.MedianHomeValue,
		MedianRent:       rec.MedianRent,
		LandSharePct:     rec.LandSharePct,
		LandValuePerAcre: rec.LandValuePerAcre,
		Appreciation5yr:  rec.Appreciation5yr,
		FMR:              rec.FMR,
	}
}

// JoinIsochrone returns an entry for every centroid inside region, in
// centroid-table order. A centroid without a housing record still yields an
// entry, with no name, state or values.
func JoinIsochrone(region Region, centroids []model.ZipCentroid, housing map[string]model.ZipRecord) []model.HousingDataEntry {
	entries := make([]model.HousingDataEntry, 0)
	for _, c := range centroids {
		if !region.Contains(c.Lat, c.Lon) {
			continue
		}
		entries = append(entries, newEntry(c, housing[c.Zip]))
	}
	return entries
}

// JoinNationwide returns an entry for every housing record that has a
// centroid, in ascending ZIP order. Records without a centroid are dropped.
func JoinNationwide(housing map[string]model.ZipRecord, centroids map[string]model.ZipCentroid) []model.HousingDataEntry {
	zips := make([]string, 0, len(housing))
	for zip := range housing {
		zips = append(zips, zip)
	}
	slices.Sort(zips)

	entries := make([]model.HousingDataEntry, 0, len(zips))
	for _, zip := range zips {
		c, ok := centroids[zip]
		if !ok {
			continue
		}
		entries = append(entries, newEntry(c, housing[zip]))
	}
	return entries
}

// Classify tiers each entry by its median home value.
func Classify(entries []model.HousingDataEntry, in model.AffordabilityInputs) []model.ClassifiedEntry {
	out := make([]model.ClassifiedEntry, len(entries))
	for i, e := range entries {
		out[i] = model.ClassifiedEntry{HousingDataEntry: e, Tier: mortgage.Tier(e.MedianHomeValue, in)}
	}
	return out
}

// AffordableJoin is a commute-zone join with every entry classified.
type AffordableJoin struct {
	Stats      model.HousingStats      `json:"stats"`
	Classified []model.ClassifiedEntry `json:"classified"`
	Markers    []model.ZipMarker       `json:"markers"`
}

// JoinAffordable joins inside region, classifies every entry and builds
// markers. Unknown-tier entries stay in Stats.Entries but get no marker.
func JoinAffordable(region Region, ds *Dataset, in model.AffordabilityInputs) AffordableJoin {
	entries := JoinIsochrone(region, ds.Centroids, ds.Housing.Zips)
	classified := Classify(entries, in)
	return AffordableJoin{
		Stats:      stats.BuildStats(entries, ds.Housing.Meta),
		Classified: classified,
		Markers:    report.BuildMarkers(classified),
	}
}

// Nationwide joins every housing record with a centroid.
func (d *Dataset) Nationwide() []model.HousingDataEntry {
	return JoinNationwide(d.Housing.Zips, d.byZip)
}

// Within joins the centroids inside region.
func (d *Dataset) Within(region Region) []model.HousingDataEntry {
	return JoinIsochrone(region, d.Centroids, d.Housing.Zips)
}
