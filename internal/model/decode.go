package model

import "encoding/json"

// The published housing table uses camelCase keys; tables written by this
// module use snake_case. Raw input types accept either and marshal snake_case.

// UnmarshalJSON decodes a housing record in either key spelling. When both
// are present the camelCase value wins.
func (r *ZipRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name                  string   `json:"name"`
		State                 string   `json:"state"`
		MedianHomeValue       *float64 `json:"medianHomeValue"`
		MedianHomeValueSnake  *float64 `json:"median_home_value"`
		MedianRent            *float64 `json:"medianRent"`
		MedianRentSnake       *float64 `json:"median_rent"`
		LandSharePct          *float64 `json:"landSharePct"`
		LandSharePctSnake     *float64 `json:"land_share_pct"`
		LandValuePerAcre      *float64 `json:"landValuePerAcre"`
		LandValuePerAcreSnake *float64 `json:"land_value_per_acre"`
		Appreciation5yr       *float64 `json:"appreciation5yr"`
		Appreciation5yrSnake  *float64 `json:"appreciation_5yr"`
		FMR                   FMR      `json:"fmr"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ZipRecord{
		Name:             raw.Name,
		State:            raw.State,
		MedianHomeValue:  either(raw.MedianHomeValue, raw.MedianHomeValueSnake),
		MedianRent:       either(raw.MedianRent, raw.MedianRentSnake),
		LandSharePct:     either(raw.LandSharePct, raw.LandSharePctSnake),
		LandValuePerAcre: either(raw.LandValuePerAcre, raw.LandValuePerAcreSnake),
		Appreciation5yr:  either(raw.Appreciation5yr, raw.Appreciation5yrSnake),
		FMR:              raw.FMR,
	}
	return nil
}

// UnmarshalJSON decodes data vintage in either key spelling.
func (m *DataMeta) UnmarshalJSON(data []byte) error {
	var raw struct {
		ZHVIDate       string `json:"zhviDate"`
		ZHVIDateSnake  string `json:"zhvi_date"`
		ZORIDate       string `json:"zoriDate"`
		ZORIDateSnake  string `json:"zori_date"`
		AEIYear        *int   `json:"aeiYear"`
		AEIYearSnake   *int   `json:"aei_year"`
		FetchedAt      string `json:"fetchedAt"`
		FetchedAtSnake string `json:"fetched_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = DataMeta{
		ZHVIDate:  firstNonEmpty(raw.ZHVIDate, raw.ZHVIDateSnake),
		ZORIDate:  firstNonEmpty(raw.ZORIDate, raw.ZORIDateSnake),
		AEIYear:   either(raw.AEIYear, raw.AEIYearSnake),
		FetchedAt: firstNonEmpty(raw.FetchedAt, raw.FetchedAtSnake),
	}
	return nil
}

func either[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
