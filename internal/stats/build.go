package stats

import "github.com/sells-group/zipafford/internal/model"

func homeValue(e model.HousingDataEntry) *float64    { return e.MedianHomeValue }
func rent(e model.HousingDataEntry) *float64         { return e.MedianRent }
func landShare(e model.HousingDataEntry) *float64    { return e.LandSharePct }
func landValue(e model.HousingDataEntry) *float64    { return e.LandValuePerAcre }
func appreciation(e model.HousingDataEntry) *float64 { return e.Appreciation5yr }

// BuildStats aggregates entries. ZipCount and Entries include every entry,
// priced or not; each numeric field is computed over its non-nil values only.
// meta is passed through unchanged.
func BuildStats(entries []model.HousingDataEntry, meta *model.DataMeta) model.HousingStats {
	values := Present(entries, homeValue)
	rents := Present(entries, rent)

	kept := make([]model.HousingDataEntry, len(entries))
	copy(kept, entries)

	return model.HousingStats{
		ZipCount:               len(entries),
		MedianHomeValue:        Median(values),
		MedianRent:             Median(rents),
		MinHomeValue:           Min(values),
		MaxHomeValue:           Max(values),
		MinRent:                Min(rents),
		MaxRent:                Max(rents),
		MedianLandSharePct:     Median(Present(entries, landShare)),
		MedianLandValuePerAcre: Median(Present(entries, landValue)),
		MedianAppreciation5yr:  Median(Present(entries, appreciation)),
		Entries:                kept,
		Meta:                   meta,
	}
}
