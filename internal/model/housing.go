package model

// Tier is the coarse affordability classification of a ZIP at a given price.
type Tier string

const (
	TierAffordable   Tier = "affordable"
	TierStretch      Tier = "stretch"
	TierUnaffordable Tier = "unaffordable"
	TierUnknown      Tier = "unknown"
)

// FMR holds HUD fair-market rents keyed by bedroom count ("0" through "4").
type FMR map[string]float64

// ZipRecord is one row of the raw per-ZIP housing table. Never mutated.
type ZipRecord struct {
	Name             string   `json:"name,omitempty"`
	State            string   `json:"state,omitempty"`
	MedianHomeValue  *float64 `json:"median_home_value"`
	MedianRent       *float64 `json:"median_rent"`
	LandSharePct     *float64 `json:"land_share_pct,omitempty"`
	LandValuePerAcre *float64 `json:"land_value_per_acre,omitempty"`
	Appreciation5yr  *float64 `json:"appreciation_5yr,omitempty"`
	FMR              FMR      `json:"fmr,omitempty"`
}

// DataMeta describes the vintage of the housing table. Passed through untouched.
type DataMeta struct {
	ZHVIDate  string `json:"zhvi_date"`
	ZORIDate  string `json:"zori_date"`
	AEIYear   *int   `json:"aei_year,omitempty"`
	FetchedAt string `json:"fetched_at"`
}

// HousingTable is the raw housing dataset: ZIP (5-digit) to record, plus vintage.
type HousingTable struct {
	Meta *DataMeta            `json:"meta,omitempty"`
	Zips map[string]ZipRecord `json:"zips"`
}

// ZipCentroid is a ZIP's representative point in WGS84.
type ZipCentroid struct {
	Zip string  `json:"zip"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HousingDataEntry is a ZipRecord joined with its centroid.
type HousingDataEntry struct {
	Zip              string   `json:"zip"`
	Name             string   `json:"name,omitempty"`
	State            string   `json:"state,omitempty"`
	Lat              float64  `json:"lat"`
	Lon              float64  `json:"lon"`
	MedianHomeValue  *float64 `json:"median_home_value"`
	MedianRent       *float64 `json:"median_rent"`
	LandSharePct     *float64 `json:"land_share_pct,omitempty"`
	LandValuePerAcre *float64 `json:"land_value_per_acre,omitempty"`
	Appreciation5yr  *float64 `json:"appreciation_5yr,omitempty"`
	FMR              FMR      `json:"fmr,omitempty"`
}

// ClassifiedEntry pairs an entry with the tier computed for its median home value.
type ClassifiedEntry struct {
	HousingDataEntry
	Tier Tier `json:"tier"`
}

// HousingStats aggregates a set of entries. Every derived number comes from Entries.
type HousingStats struct {
	ZipCount               int                `json:"zip_count"`
	MedianHomeValue        *float64           `json:"median_home_value"`
	MedianRent             *float64           `json:"median_rent"`
	MinHomeValue           *float64           `json:"min_home_value"`
	MaxHomeValue           *float64           `json:"max_home_value"`
	MinRent                *float64           `json:"min_rent"`
	MaxRent                *float64           `json:"max_rent"`
	MedianLandSharePct     *float64           `json:"median_land_share_pct,omitempty"`
	MedianLandValuePerAcre *float64           `json:"median_land_value_per_acre,omitempty"`
	MedianAppreciation5yr  *float64           `json:"median_appreciation_5yr,omitempty"`
	Entries                []HousingDataEntry `json:"entries"`
	Meta                   *DataMeta          `json:"meta,omitempty"`
}

// StateAffordability is the per-state rollup of classified ZIPs.
type StateAffordability struct {
	State             string             `json:"state"`
	StateName         string             `json:"state_name"`
	TotalZips         int                `json:"total_zips"`
	AffordableCount   int                `json:"affordable_count"`
	StretchCount      int                `json:"stretch_count"`
	UnaffordableCount int                `json:"unaffordable_count"`
	PctAffordable     int                `json:"pct_affordable"`
	MedianHomeValue   *float64           `json:"median_home_value"`
	MedianRent        *float64           `json:"median_rent"`
	Entries           []HousingDataEntry `json:"entries,omitempty"`
}

// ZipMarker is a map point for a classified ZIP.
type ZipMarker struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zip  string  `json:"zip"`
	Tier Tier    `json:"tier"`
}
