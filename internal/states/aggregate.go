package states

import (
	"math"
	"slices"

	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/stats"
)

// UnknownState buckets entries with no state. The bucket never appears in output.
const UnknownState = "Unknown"

type bucket struct {
	total        int
	affordable   int
	stretch      int
	unaffordable int
	retained     []model.HousingDataEntry
	homeValues   []float64
	rents        []float64
}

// Aggregate rolls classified entries up by state.
//
// Only entries with a home value count toward a state's total. Of those, the
// affordable and stretch ones are kept as the state's entries; unaffordable
// ones are counted but not kept. States with no priced ZIP are omitted. The
// result is sorted by PctAffordable descending, ties in first-seen order.
// Medians are taken over every priced entry in the state.
func Aggregate(entries []model.ClassifiedEntry) []model.StateAffordability {
	buckets := make(map[string]*bucket)
	var order []string

	for _, e := range entries {
		abbr := e.State
		if abbr == "" {
			abbr = UnknownState
		}
		b, ok := buckets[abbr]
		if !ok {
			b = &bucket{}
			buckets[abbr] = b
			order = append(order, abbr)
		}
		if e.MedianHomeValue == nil {
			continue
		}

		b.total++
		b.homeValues = append(b.homeValues, *e.MedianHomeValue)
		if e.MedianRent != nil {
			b.rents = append(b.rents, *e.MedianRent)
		}
		switch e.Tier {
		case model.TierAffordable:
			b.affordable++
			b.retained = append(b.retained, e.HousingDataEntry)
		case model.TierStretch:
			b.stretch++
			b.retained = append(b.retained, e.HousingDataEntry)
		case model.TierUnaffordable:
			b.unaffordable++
		}
	}

	out := make([]model.StateAffordability, 0, len(order))
	for _, abbr := range order {
		b := buckets[abbr]
		if abbr == UnknownState || b.total == 0 {
			continue
		}
		out = append(out, model.StateAffordability{
			State:             abbr,
			StateName:         Name(abbr),
			TotalZips:         b.total,
			AffordableCount:   b.affordable,
			StretchCount:      b.stretch,
			UnaffordableCount: b.unaffordable,
			PctAffordable:     PctAffordable(b.affordable, b.stretch, b.total),
			MedianHomeValue:   stats.Median(b.homeValues),
			MedianRent:        stats.Median(b.rents),
			Entries:           b.retained,
		})
	}

	slices.SortStableFunc(out, func(a, b model.StateAffordability) int {
		return b.PctAffordable - a.PctAffordable
	})
	return out
}

// PctAffordable is round(100*(affordable+stretch)/total) with halves rounded
// up, or 0 when total is 0.
func PctAffordable(affordable, stretch, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(affordable+stretch)/float64(total) + 0.5))
}

// DrillDown rebuilds stats for one state from already classified nationwide
// entries, without going back to the raw tables.
func DrillDown(entries []model.ClassifiedEntry, abbr string, meta *model.DataMeta) model.HousingStats {
	want := abbr
	if s, ok := Lookup(abbr); ok {
		want = s.Abbr
	}
	var picked []model.HousingDataEntry
	for _, e := range entries {
		if e.State == want {
			picked = append(picked, e.HousingDataEntry)
		}
	}
	return stats.BuildStats(picked, meta)
}
